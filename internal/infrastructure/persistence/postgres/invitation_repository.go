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
	invColumns = `id, organization_id, email, role, token, expires_at, accepted_at, created_by, created_at`

	createInvitationSQL = `INSERT INTO invitations (id, organization_id, email, role, token, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	getInvitationByTokenSQL = `SELECT ` + invColumns + ` FROM invitations WHERE token = $1`
	getOutstandingSQL       = `SELECT ` + invColumns + ` FROM invitations
		WHERE organization_id = $1 AND lower(email) = lower($2) AND accepted_at IS NULL AND expires_at > $3`
	getInvitationOrgRoleSQL = `SELECT organization_id, role FROM invitations WHERE id = $1 AND accepted_at IS NULL FOR UPDATE`
	markAcceptedSQL         = `UPDATE invitations SET accepted_at = now() WHERE id = $1`
)

type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.pool.Exec(ctx, createInvitationSQL,
		inv.ID.UUID, inv.OrganizationID.UUID, inv.Email, string(inv.Role),
		inv.Token, inv.ExpiresAt, inv.CreatedBy.UUID, inv.CreatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrInvitationPending
	}
	return err
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.getOne(ctx, getInvitationByTokenSQL, token)
}

func (r *InvitationRepository) GetOutstanding(ctx context.Context, orgID domain.OrganizationID, email string, now time.Time) (*domain.Invitation, error) {
	return r.getOne(ctx, getOutstandingSQL, orgID.UUID, email, now)
}

func (r *InvitationRepository) getOne(ctx context.Context, sql string, args ...interface{}) (*domain.Invitation, error) {
	var i db.Invitation
	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Token,
		&i.ExpiresAt, &i.AcceptedAt, &i.CreatedBy, &i.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbInvitationToDomain(i), nil
}

// Accept runs membership creation, the member-count increment and the
// accepted-at update in one transaction. If the user already holds a
// membership, only the invitation is marked accepted.
func (r *InvitationRepository) Accept(ctx context.Context, id domain.InvitationID, userID domain.UserID, role domain.TenantRole) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var orgID db.Invitation
	if err := tx.QueryRow(ctx, getInvitationOrgRoleSQL, id.UUID).Scan(&orgID.OrganizationID, &orgID.Role); err != nil {
		if err == pgx.ErrNoRows {
			return domerrors.ErrInvitationUsed
		}
		return err
	}

	var hasMembership bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1 AND organization_id = $2)`,
		userID.UUID, orgID.OrganizationID).Scan(&hasMembership); err != nil {
		return err
	}
	if !hasMembership {
		if _, err := tx.Exec(ctx, addMemberSQL, userID.UUID, orgID.OrganizationID, string(role), time.Now()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, incrementMemberCountSQL, orgID.OrganizationID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, markAcceptedSQL, id.UUID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func dbInvitationToDomain(i db.Invitation) *domain.Invitation {
	inv := &domain.Invitation{
		ID:             domain.NewInvitationID(i.ID),
		OrganizationID: domain.NewOrganizationID(i.OrganizationID),
		Email:          i.Email,
		Role:           domain.TenantRole(i.Role),
		Token:          i.Token,
		ExpiresAt:      i.ExpiresAt,
		CreatedBy:      domain.NewUserID(i.CreatedBy),
		CreatedAt:      i.CreatedAt,
	}
	if i.AcceptedAt.Valid {
		at := i.AcceptedAt.Time
		inv.AcceptedAt = &at
	}
	return inv
}

var _ ports.InvitationRepository = (*InvitationRepository)(nil)
