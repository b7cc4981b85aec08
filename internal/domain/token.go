package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one ledger row per issued refresh token. The row id doubles
// as the JWT jti claim; the raw identifier is never stored, only its hash.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    UserID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the token can still be exchanged.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
