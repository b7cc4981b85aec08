package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/persistence/db"
)

const (
	createRefreshTokenSQL = `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	getRefreshTokenSQL = `SELECT id, user_id, token_hash, expires_at, revoked, revoked_at, created_at
		FROM refresh_tokens WHERE id = $1`
	// Guarded update: at most one caller wins a concurrent rotation.
	revokeRefreshTokenSQL = `UPDATE refresh_tokens SET revoked = true, revoked_at = now()
		WHERE id = $1 AND revoked = false`
	revokeAllForUserSQL = `UPDATE refresh_tokens SET revoked = true, revoked_at = now()
		WHERE user_id = $1 AND revoked = false`
	deleteRevokedSQL = `DELETE FROM refresh_tokens WHERE revoked = true`
)

// TokenStore implements the refresh token ledger over postgres.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) Create(ctx context.Context, token *domain.RefreshToken) error {
	_, err := s.pool.Exec(ctx, createRefreshTokenSQL,
		token.ID, token.UserID.UUID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrTokenIDExists
	}
	return err
}

func (s *TokenStore) GetByID(ctx context.Context, jti uuid.UUID) (*domain.RefreshToken, error) {
	var t db.RefreshToken
	err := s.pool.QueryRow(ctx, getRefreshTokenSQL, jti).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	token := &domain.RefreshToken{
		ID:        t.ID,
		UserID:    domain.NewUserID(t.UserID),
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Revoked:   t.Revoked,
		CreatedAt: t.CreatedAt,
	}
	if t.RevokedAt.Valid {
		at := t.RevokedAt.Time
		token.RevokedAt = &at
	}
	return token, nil
}

func (s *TokenStore) Revoke(ctx context.Context, jti uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, revokeRefreshTokenSQL, jti)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID domain.UserID) error {
	_, err := s.pool.Exec(ctx, revokeAllForUserSQL, userID.UUID)
	return err
}

func (s *TokenStore) DeleteRevoked(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, deleteRevokedSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ports.TokenStore = (*TokenStore)(nil)
