package auth

import (
	"context"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// Logout revokes every outstanding refresh token for the user, not just the
// current device, then opportunistically purges already-revoked rows.
type Logout struct {
	users ports.UserRepository
	store ports.TokenStore
}

func NewLogout(users ports.UserRepository, store ports.TokenStore) *Logout {
	return &Logout{users: users, store: store}
}

func (uc *Logout) Execute(ctx context.Context, userID domain.UserID) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if err := uc.store.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	// Ledger GC. Failure here does not fail the logout.
	_, _ = uc.store.DeleteRevoked(ctx)
	return nil
}
