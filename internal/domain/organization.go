package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationID is a value object for organization (tenant) identity.
type OrganizationID struct{ uuid.UUID }

// NewOrganizationID creates a new OrganizationID from uuid.
func NewOrganizationID(id uuid.UUID) OrganizationID { return OrganizationID{UUID: id} }

// String returns the canonical string form.
func (o OrganizationID) String() string { return o.UUID.String() }

// TenantRole is a user's role inside one organization, distinct from SystemRole.
type TenantRole string

const (
	TenantRoleOwner  TenantRole = "OWNER"
	TenantRoleAdmin  TenantRole = "ADMIN"
	TenantRoleMember TenantRole = "MEMBER"
)

// Valid reports whether the role is one of the closed set.
func (r TenantRole) Valid() bool {
	switch r {
	case TenantRoleOwner, TenantRoleAdmin, TenantRoleMember:
		return true
	}
	return false
}

// OneOf reports whether the role is in the allow-set.
func (r TenantRole) OneOf(allowed ...TenantRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Organization is a tenant. Users belong via Membership rows.
type Organization struct {
	ID          OrganizationID
	Name        string
	OwnerID     UserID
	MemberCount int
	CreatedAt   time.Time
}

// Membership links a user to an organization with a tenant role.
// Exactly one row exists per (user, organization) pair.
type Membership struct {
	UserID         UserID
	OrganizationID OrganizationID
	Role           TenantRole
	CreatedAt      time.Time
}
