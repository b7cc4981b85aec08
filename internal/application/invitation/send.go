package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

const DefaultExpiryDays = 7

type SendInput struct {
	OrganizationID domain.OrganizationID
	Email          string
	Role           domain.TenantRole
	ExpiresInDays  int
}

type SendResult struct {
	Invitation *domain.Invitation
}

// Send creates an invitation and enqueues the email. At most one outstanding
// invitation may exist per (organization, email); an address that already
// belongs to the organization cannot be invited.
type Send struct {
	invitations ports.InvitationRepository
	orgs        ports.OrganizationRepository
	enqueuer    ports.MailEnqueuer
	baseURL     string
	expiryDays  int
}

func NewSend(invitations ports.InvitationRepository, orgs ports.OrganizationRepository, enqueuer ports.MailEnqueuer, baseURL string, expiryDays int) *Send {
	if expiryDays <= 0 {
		expiryDays = DefaultExpiryDays
	}
	return &Send{
		invitations: invitations,
		orgs:        orgs,
		enqueuer:    enqueuer,
		baseURL:     baseURL,
		expiryDays:  expiryDays,
	}
}

func (uc *Send) Execute(ctx context.Context, actorID domain.UserID, input SendInput) (*SendResult, error) {
	org, err := uc.orgs.GetByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	isMember, err := uc.orgs.IsMemberByEmail(ctx, input.OrganizationID, input.Email)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, domerrors.ErrAlreadyMember
	}
	now := time.Now()
	outstanding, err := uc.invitations.GetOutstanding(ctx, input.OrganizationID, input.Email, now)
	if err != nil {
		return nil, err
	}
	if outstanding != nil {
		return nil, domerrors.ErrInvitationPending
	}
	role := input.Role
	if role == "" {
		role = domain.TenantRoleMember
	}
	days := input.ExpiresInDays
	if days <= 0 {
		days = uc.expiryDays
	}
	inv := &domain.Invitation{
		ID:             domain.NewInvitationID(uuid.New()),
		OrganizationID: input.OrganizationID,
		Email:          input.Email,
		Role:           role,
		Token:          uuid.NewString(),
		ExpiresAt:      now.AddDate(0, 0, days),
		CreatedBy:      actorID,
		CreatedAt:      now,
	}
	if err := uc.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("%s?token=%s", uc.baseURL, inv.Token)
	if err := uc.enqueuer.EnqueueInvitationEmail(ctx, inv.Email, org.Name, string(role), link, inv.ExpiresAt); err != nil {
		return nil, err
	}
	return &SendResult{Invitation: inv}, nil
}
