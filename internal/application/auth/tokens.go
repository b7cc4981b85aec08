package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenPair is a freshly minted access/refresh pair. ExpiresAt is the refresh
// token expiry, used by callers to set the cookie lifetime.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Tokens mints access/refresh pairs and records the refresh jti in the ledger.
type Tokens struct {
	users      ports.UserRepository
	store      ports.TokenStore
	signer     ports.TokenSigner
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokens(users ports.UserRepository, store ports.TokenStore, signer ports.TokenSigner, accessTTL, refreshTTL time.Duration) *Tokens {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenExpiry
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenExpiry
	}
	return &Tokens{
		users:      users,
		store:      store,
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Generate loads the user, signs a new pair and persists the ledger row.
// A deleted user holding a stale reference fails as unauthorized, not as
// not-found, so a refresh cannot probe whether an account still exists; a
// jti collision surfaces as ErrTokenIDExists rather than being swallowed.
func (uc *Tokens) Generate(ctx context.Context, userID domain.UserID) (*TokenPair, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrInvalidToken
	}
	jti := uuid.New()
	accessToken, err := uc.signer.IssueAccessToken(user.ID.String(), string(user.Role), uc.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.signer.IssueRefreshToken(user.ID.String(), jti.String(), uc.refreshTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	expiresAt := now.Add(uc.refreshTTL)
	if err := uc.store.Create(ctx, &domain.RefreshToken{
		ID:        jti,
		UserID:    user.ID,
		TokenHash: sha256Hash(jti.String()),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
