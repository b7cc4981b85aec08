package auth

import (
	"context"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Tokens *TokenPair
	User   *domain.User
}

// Login checks credentials and issues a token pair. Unknown email and wrong
// password are indistinguishable to the caller; an unverified account is a
// distinct failure so the client can prompt for re-verification.
type Login struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens *Tokens
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, tokens *Tokens) *Login {
	return &Login{users: users, hasher: hasher, tokens: tokens}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return nil, domerrors.ErrEmailNotVerified
	}
	pair, err := uc.tokens.Generate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair, User: user}, nil
}
