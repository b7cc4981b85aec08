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
	userColumns = `id, email, password_hash, name, role, is_email_verified, verify_token, verify_expires_at, created_at, updated_at`

	createUserSQL = `INSERT INTO users (id, email, password_hash, name, role, is_email_verified, verify_token, verify_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	getUserByEmailSQL       = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	getUserByIDSQL          = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByVerifyTokenSQL = `SELECT ` + userColumns + ` FROM users WHERE verify_token = $1`
	setVerifyTokenSQL       = `UPDATE users SET verify_token = $2, verify_expires_at = $3, updated_at = now() WHERE id = $1`
	markEmailVerifiedSQL    = `UPDATE users SET is_email_verified = true, verify_token = NULL, verify_expires_at = NULL, updated_at = now() WHERE id = $1`
	updateUserSQL           = `UPDATE users SET
		email = COALESCE($2, email),
		name = COALESCE($3, name),
		password_hash = COALESCE($4, password_hash),
		role = COALESCE($5, role),
		updated_at = now()
		WHERE id = $1`
	deleteUserSQL = `DELETE FROM users WHERE id = $1`
	listUsersSQL  = `SELECT ` + userColumns + ` FROM users ORDER BY created_at LIMIT $1 OFFSET $2`
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		user.ID.UUID, user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.IsEmailVerified, user.VerifyToken, user.VerifyExpiresAt,
		user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id.UUID)
}

func (r *UserRepository) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getOne(ctx, getUserByVerifyTokenSQL, token)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg interface{}) (*domain.User, error) {
	var u db.User
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsEmailVerified,
		&u.VerifyToken, &u.VerifyExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (r *UserRepository) SetVerifyToken(ctx context.Context, id domain.UserID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, setVerifyTokenSQL, id.UUID, token, expiresAt)
	return err
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id domain.UserID) error {
	_, err := r.pool.Exec(ctx, markEmailVerifiedSQL, id.UUID)
	return err
}

func (r *UserRepository) Update(ctx context.Context, id domain.UserID, upd ports.UserUpdate) error {
	var role *string
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}
	_, err := r.pool.Exec(ctx, updateUserSQL, id.UUID, upd.Email, upd.Name, upd.PasswordHash, role)
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id domain.UserID) error {
	_, err := r.pool.Exec(ctx, deleteUserSQL, id.UUID)
	return err
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsEmailVerified,
			&u.VerifyToken, &u.VerifyExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, dbUserToDomain(u))
	}
	return list, rows.Err()
}

func dbUserToDomain(u db.User) *domain.User {
	user := &domain.User{
		ID:              domain.NewUserID(u.ID),
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Name:            u.Name,
		Role:            domain.SystemRole(u.Role),
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.VerifyToken.Valid {
		t := u.VerifyToken.String
		user.VerifyToken = &t
	}
	if u.VerifyExpiresAt.Valid {
		t := u.VerifyExpiresAt.Time
		user.VerifyExpiresAt = &t
	}
	return user
}

var _ ports.UserRepository = (*UserRepository)(nil)
