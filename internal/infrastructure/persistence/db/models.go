package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Row structs scanned directly from postgres.

type User struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string
	Name            string
	Role            string
	IsEmailVerified bool
	VerifyToken     pgtype.Text
	VerifyExpiresAt pgtype.Timestamptz
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt pgtype.Timestamptz
	CreatedAt time.Time
}

type Organization struct {
	ID          uuid.UUID
	Name        string
	OwnerID     uuid.UUID
	MemberCount int32
	CreatedAt   time.Time
}

type Membership struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
	CreatedAt      time.Time
}

type Invitation struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Email          string
	Role           string
	Token          string
	ExpiresAt      time.Time
	AcceptedAt     pgtype.Timestamptz
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
}

type Task struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	Title          string
	Description    string
	DueDate        pgtype.Timestamptz
	IsCompleted    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
