package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/persistence/db"
)

const (
	orgColumns = `id, name, owner_id, member_count, created_at`

	createOrgSQL = `INSERT INTO organizations (id, name, owner_id, member_count, created_at)
		VALUES ($1, $2, $3, 1, $4)`
	createOwnerMembershipSQL = `INSERT INTO memberships (user_id, organization_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	getOrgByIDSQL   = `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1`
	getOrgByNameSQL = `SELECT ` + orgColumns + ` FROM organizations WHERE lower(name) = lower($1)`
	listOrgsForUserSQL = `SELECT o.id, o.name, o.owner_id, o.member_count, o.created_at
		FROM organizations o JOIN memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1 ORDER BY o.created_at`
	updateOrgNameSQL = `UPDATE organizations SET name = $2 WHERE id = $1`
	deleteOrgSQL     = `DELETE FROM organizations WHERE id = $1`

	getMemberSQL = `SELECT user_id, organization_id, role, created_at
		FROM memberships WHERE organization_id = $1 AND user_id = $2`
	addMemberSQL = `INSERT INTO memberships (user_id, organization_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	incrementMemberCountSQL = `UPDATE organizations SET member_count = member_count + 1 WHERE id = $1`
	listMembersSQL          = `SELECT user_id, organization_id, role, created_at
		FROM memberships WHERE organization_id = $1 ORDER BY created_at`
	isMemberByEmailSQL = `SELECT EXISTS (
		SELECT 1 FROM memberships m JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1 AND lower(u.email) = lower($2))`
)

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

// Create inserts the organization and the owner membership in one transaction.
func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, createOrgSQL, org.ID.UUID, org.Name, org.OwnerID.UUID, org.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrOrgNameTaken
		}
		return err
	}
	if _, err := tx.Exec(ctx, createOwnerMembershipSQL,
		org.OwnerID.UUID, org.ID.UUID, string(domain.TenantRoleOwner), org.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	return r.getOne(ctx, getOrgByIDSQL, id.UUID)
}

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	return r.getOne(ctx, getOrgByNameSQL, name)
}

func (r *OrganizationRepository) getOne(ctx context.Context, sql string, arg interface{}) (*domain.Organization, error) {
	var o db.Organization
	err := r.pool.QueryRow(ctx, sql, arg).Scan(&o.ID, &o.Name, &o.OwnerID, &o.MemberCount, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbOrgToDomain(o), nil
}

func (r *OrganizationRepository) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Organization, error) {
	rows, err := r.pool.Query(ctx, listOrgsForUserSQL, userID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Organization
	for rows.Next() {
		var o db.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.OwnerID, &o.MemberCount, &o.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, dbOrgToDomain(o))
	}
	return list, rows.Err()
}

func (r *OrganizationRepository) UpdateName(ctx context.Context, id domain.OrganizationID, name string) error {
	_, err := r.pool.Exec(ctx, updateOrgNameSQL, id.UUID, name)
	if isUniqueViolation(err) {
		return domerrors.ErrOrgNameTaken
	}
	return err
}

func (r *OrganizationRepository) Delete(ctx context.Context, id domain.OrganizationID) error {
	_, err := r.pool.Exec(ctx, deleteOrgSQL, id.UUID)
	return err
}

func (r *OrganizationRepository) GetMember(ctx context.Context, orgID domain.OrganizationID, userID domain.UserID) (*domain.Membership, error) {
	var m db.Membership
	err := r.pool.QueryRow(ctx, getMemberSQL, orgID.UUID, userID.UUID).Scan(
		&m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbMembershipToDomain(m), nil
}

// AddMember inserts the membership and bumps the member count atomically.
func (r *OrganizationRepository) AddMember(ctx context.Context, orgID domain.OrganizationID, userID domain.UserID, role domain.TenantRole) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, addMemberSQL, userID.UUID, orgID.UUID, string(role), time.Now()); err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrAlreadyMember
		}
		return err
	}
	if _, err := tx.Exec(ctx, incrementMemberCountSQL, orgID.UUID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrganizationRepository) ListMembers(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(ctx, listMembersSQL, orgID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Membership
	for rows.Next() {
		var m db.Membership
		if err := rows.Scan(&m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, dbMembershipToDomain(m))
	}
	return list, rows.Err()
}

func (r *OrganizationRepository) IsMemberByEmail(ctx context.Context, orgID domain.OrganizationID, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, isMemberByEmailSQL, orgID.UUID, email).Scan(&exists)
	return exists, err
}

func dbOrgToDomain(o db.Organization) *domain.Organization {
	return &domain.Organization{
		ID:          domain.NewOrganizationID(o.ID),
		Name:        o.Name,
		OwnerID:     domain.NewUserID(o.OwnerID),
		MemberCount: int(o.MemberCount),
		CreatedAt:   o.CreatedAt,
	}
}

func dbMembershipToDomain(m db.Membership) *domain.Membership {
	return &domain.Membership{
		UserID:         domain.NewUserID(m.UserID),
		OrganizationID: domain.NewOrganizationID(m.OrganizationID),
		Role:           domain.TenantRole(m.Role),
		CreatedAt:      m.CreatedAt,
	}
}

var _ ports.OrganizationRepository = (*OrganizationRepository)(nil)
