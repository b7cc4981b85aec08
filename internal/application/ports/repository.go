package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
)

// UserUpdate carries optional profile fields; nil means leave unchanged.
type UserUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Role         *domain.SystemRole
}

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByVerifyToken(ctx context.Context, token string) (*domain.User, error)
	// SetVerifyToken replaces the pending verification token and its expiry.
	SetVerifyToken(ctx context.Context, id domain.UserID, token string, expiresAt time.Time) error
	// MarkEmailVerified sets the verified flag and clears the token.
	MarkEmailVerified(ctx context.Context, id domain.UserID) error
	Update(ctx context.Context, id domain.UserID, upd UserUpdate) error
	Delete(ctx context.Context, id domain.UserID) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// TokenStore defines the refresh token ledger. The ledger, not the JWT, is
// authoritative for revocation.
type TokenStore interface {
	// Create inserts a ledger row. A jti collision returns ErrTokenIDExists.
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByID(ctx context.Context, jti uuid.UUID) (*domain.RefreshToken, error)
	// Revoke marks a single row revoked. Returns false when the row was
	// missing or already revoked, so concurrent rotations have one winner.
	Revoke(ctx context.Context, jti uuid.UUID) (bool, error)
	RevokeAllForUser(ctx context.Context, userID domain.UserID) error
	// DeleteRevoked purges rows already flagged revoked.
	DeleteRevoked(ctx context.Context) (int64, error)
}

// OrganizationRepository defines persistence for organizations and memberships.
type OrganizationRepository interface {
	// Create inserts the organization together with the owner membership
	// (role OWNER, member count 1) as one atomic unit.
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error)
	GetByName(ctx context.Context, name string) (*domain.Organization, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Organization, error)
	UpdateName(ctx context.Context, id domain.OrganizationID, name string) error
	Delete(ctx context.Context, id domain.OrganizationID) error

	GetMember(ctx context.Context, orgID domain.OrganizationID, userID domain.UserID) (*domain.Membership, error)
	// AddMember inserts the membership and increments the member count
	// atomically. A duplicate pair returns ErrAlreadyMember.
	AddMember(ctx context.Context, orgID domain.OrganizationID, userID domain.UserID, role domain.TenantRole) error
	ListMembers(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Membership, error)
	IsMemberByEmail(ctx context.Context, orgID domain.OrganizationID, email string) (bool, error)
}

// InvitationRepository defines persistence for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	// GetOutstanding returns the unaccepted, unexpired invitation for the
	// (organization, email) pair, or nil.
	GetOutstanding(ctx context.Context, orgID domain.OrganizationID, email string, now time.Time) (*domain.Invitation, error)
	// Accept creates the membership (unless the user already has one),
	// increments the member count and sets accepted_at in one transaction.
	Accept(ctx context.Context, id domain.InvitationID, userID domain.UserID, role domain.TenantRole) error
}

// TaskUpdate carries optional task fields; nil means leave unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	IsCompleted *bool
}

// TaskRepository defines persistence for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error)
	ListByOrganization(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Task, error)
	ListByCreator(ctx context.Context, userID domain.UserID) ([]*domain.Task, error)
	Update(ctx context.Context, id domain.TaskID, upd TaskUpdate) error
	Delete(ctx context.Context, id domain.TaskID) error
}
