package organization

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// Service covers organization and membership operations.
type Service struct {
	orgs  ports.OrganizationRepository
	users ports.UserRepository
}

func NewService(orgs ports.OrganizationRepository, users ports.UserRepository) *Service {
	return &Service{orgs: orgs, users: users}
}

// Create makes a new organization; the creator becomes its OWNER member and
// the member count starts at 1. Names are unique system-wide.
func (s *Service) Create(ctx context.Context, ownerID domain.UserID, name string) (*domain.Organization, error) {
	existing, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrOrgNameTaken
	}
	org := &domain.Organization{
		ID:          domain.NewOrganizationID(uuid.New()),
		Name:        name,
		OwnerID:     ownerID,
		MemberCount: 1,
		CreatedAt:   time.Now(),
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Get returns the organization; the caller must already be a member
// (enforced by the tenant guard on the route).
func (s *Service) Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	return org, nil
}

// ListForUser returns the organizations the user belongs to.
func (s *Service) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Organization, error) {
	return s.orgs.ListForUser(ctx, userID)
}

// Rename changes the organization name, keeping the uniqueness invariant.
func (s *Service) Rename(ctx context.Context, id domain.OrganizationID, name string) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	byName, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if byName != nil && byName.ID != org.ID {
		return nil, domerrors.ErrOrgNameTaken
	}
	if err := s.orgs.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	org.Name = name
	return org, nil
}

// Delete removes the organization. Owner only.
func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.OrganizationID) error {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if org == nil {
		return domerrors.ErrOrgNotFound
	}
	if org.OwnerID != actorID {
		return domerrors.ErrNotOrgOwner
	}
	return s.orgs.Delete(ctx, id)
}

// AddMember adds a user to the organization. The actor must be the owner or
// hold an ADMIN/OWNER tenant role.
func (s *Service) AddMember(ctx context.Context, actorID domain.UserID, orgID domain.OrganizationID, userID domain.UserID, role domain.TenantRole) (*domain.Membership, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	if org.OwnerID != actorID {
		actor, err := s.orgs.GetMember(ctx, orgID, actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil || !actor.Role.OneOf(domain.TenantRoleAdmin, domain.TenantRoleOwner) {
			return nil, domerrors.ErrInsufficientRole
		}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	existing, err := s.orgs.GetMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrAlreadyMember
	}
	if role == "" {
		role = domain.TenantRoleMember
	}
	if err := s.orgs.AddMember(ctx, orgID, userID, role); err != nil {
		return nil, err
	}
	return s.orgs.GetMember(ctx, orgID, userID)
}

// ListMembers returns the memberships of an organization.
func (s *Service) ListMembers(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Membership, error) {
	return s.orgs.ListMembers(ctx, orgID)
}
