package invitation

import (
	"context"
	"time"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type AcceptInput struct {
	Token string
}

type AcceptResult struct {
	OrganizationID domain.OrganizationID
}

// Accept turns an invitation into a membership. Membership creation, the
// member-count increment and marking the invitation accepted happen as one
// atomic unit in the repository, or not at all.
type Accept struct {
	invitations ports.InvitationRepository
	users       ports.UserRepository
}

func NewAccept(invitations ports.InvitationRepository, users ports.UserRepository) *Accept {
	return &Accept{invitations: invitations, users: users}
}

func (uc *Accept) Execute(ctx context.Context, userID domain.UserID, input AcceptInput) (*AcceptResult, error) {
	inv, err := uc.invitations.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domerrors.ErrInvitationNotFound
	}
	if inv.AcceptedAt != nil {
		return nil, domerrors.ErrInvitationUsed
	}
	if !inv.ExpiresAt.After(time.Now()) {
		return nil, domerrors.ErrInvitationExpired
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if err := uc.invitations.Accept(ctx, inv.ID, userID, inv.Role); err != nil {
		return nil, err
	}
	return &AcceptResult{OrganizationID: inv.OrganizationID}, nil
}
