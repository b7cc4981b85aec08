package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationID is a value object for invitation identity.
type InvitationID struct{ uuid.UUID }

// NewInvitationID creates a new InvitationID from uuid.
func NewInvitationID(id uuid.UUID) InvitationID { return InvitationID{UUID: id} }

// String returns the canonical string form.
func (i InvitationID) String() string { return i.UUID.String() }

// Invitation is a pending offer of membership in an organization.
// At most one unaccepted, unexpired invitation exists per (organization, email).
type Invitation struct {
	ID             InvitationID
	OrganizationID OrganizationID
	Email          string
	Role           TenantRole
	Token          string
	ExpiresAt      time.Time
	AcceptedAt     *time.Time
	CreatedBy      UserID
	CreatedAt      time.Time
}

// Outstanding reports whether the invitation is still open for acceptance.
func (i *Invitation) Outstanding(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}
