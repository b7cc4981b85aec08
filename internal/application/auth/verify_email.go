package auth

import (
	"context"
	"time"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type VerifyEmailInput struct {
	Token string
}

type VerifyEmailResult struct {
	Tokens *TokenPair
}

// VerifyEmail confirms the token from the verification link, marks the user
// verified and logs them in by issuing a fresh token pair.
type VerifyEmail struct {
	users  ports.UserRepository
	tokens *Tokens
}

func NewVerifyEmail(users ports.UserRepository, tokens *Tokens) *VerifyEmail {
	return &VerifyEmail{users: users, tokens: tokens}
}

func (uc *VerifyEmail) Execute(ctx context.Context, input VerifyEmailInput) (*VerifyEmailResult, error) {
	if input.Token == "" {
		return nil, domerrors.ErrVerificationInvalid
	}
	user, err := uc.users.GetByVerifyToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrVerificationInvalid
	}
	if user.VerifyExpiresAt == nil || user.VerifyExpiresAt.Before(time.Now()) {
		return nil, domerrors.ErrVerificationInvalid
	}
	if err := uc.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	pair, err := uc.tokens.Generate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyEmailResult{Tokens: pair}, nil
}
