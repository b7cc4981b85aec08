package auth

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const DefaultVerifyTokenExpiry = time.Hour

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type RegisterResult struct {
	User *domain.User
	// Resent is true when the user already existed with an expired
	// verification token and a fresh link was issued instead.
	Resent bool
}

// Register creates an unverified user and sends exactly one verification
// email per call. A verified duplicate conflicts; an unverified duplicate
// with a still-valid token is told to check their inbox.
type Register struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	enqueuer  ports.MailEnqueuer
	baseURL   string
	verifyTTL time.Duration
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher, enqueuer ports.MailEnqueuer, baseURL string, verifyTTL time.Duration) *Register {
	if verifyTTL <= 0 {
		verifyTTL = DefaultVerifyTokenExpiry
	}
	return &Register{
		users:     users,
		hasher:    hasher,
		enqueuer:  enqueuer,
		baseURL:   baseURL,
		verifyTTL: verifyTTL,
	}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidEmail
	}
	now := time.Now()
	existing, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsEmailVerified {
			return nil, domerrors.ErrEmailTaken
		}
		if existing.VerificationPending(now) {
			return nil, domerrors.ErrVerificationPending
		}
		// Expired pending token: rotate it and resend, no second row.
		token := uuid.NewString()
		expiresAt := now.Add(uc.verifyTTL)
		if err := uc.users.SetVerifyToken(ctx, existing.ID, token, expiresAt); err != nil {
			return nil, err
		}
		if err := uc.enqueuer.EnqueueVerificationEmail(ctx, existing.Email, uc.verifyLink(token), expiresAt); err != nil {
			return nil, err
		}
		return &RegisterResult{User: existing, Resent: true}, nil
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	expiresAt := now.Add(uc.verifyTTL)
	user := &domain.User{
		ID:              domain.NewUserID(uuid.New()),
		Email:           input.Email,
		PasswordHash:    hash,
		Name:            input.Name,
		Role:            domain.SystemRoleUser,
		VerifyToken:     &token,
		VerifyExpiresAt: &expiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	// A failed enqueue fails the call; success means the email went out.
	if err := uc.enqueuer.EnqueueVerificationEmail(ctx, user.Email, uc.verifyLink(token), expiresAt); err != nil {
		return nil, err
	}
	return &RegisterResult{User: user}, nil
}

func (uc *Register) verifyLink(token string) string {
	return fmt.Sprintf("%s?token=%s", uc.baseURL, token)
}
