package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// SystemRole is the system-wide role of a user, independent of any organization.
type SystemRole string

const (
	SystemRoleUser  SystemRole = "USER"
	SystemRoleAdmin SystemRole = "ADMIN"
	SystemRoleOwner SystemRole = "OWNER"
)

// Valid reports whether the role is one of the closed set.
func (r SystemRole) Valid() bool {
	switch r {
	case SystemRoleUser, SystemRoleAdmin, SystemRoleOwner:
		return true
	}
	return false
}

// OneOf reports whether the role is in the allow-set.
func (r SystemRole) OneOf(allowed ...SystemRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User is an account identity. Email is unique across the system.
type User struct {
	ID              UserID
	Email           string
	PasswordHash    string
	Name            string
	Role            SystemRole
	IsEmailVerified bool
	// VerifyToken and VerifyExpiresAt are set while email verification is pending.
	VerifyToken     *string
	VerifyExpiresAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VerificationPending reports whether an unexpired verification token is outstanding.
func (u *User) VerificationPending(now time.Time) bool {
	return u.VerifyToken != nil && u.VerifyExpiresAt != nil && u.VerifyExpiresAt.After(now)
}
