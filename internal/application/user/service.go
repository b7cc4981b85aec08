package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// Service covers user profile management and admin operations.
type Service struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewService(users ports.UserRepository, hasher ports.PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

type CreateInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.SystemRole
}

// Create provisions a user directly, bypassing the verification flow. Meant
// for administrative use; the account comes out already verified.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrEmailTaken
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.SystemRoleUser
	}
	now := time.Now()
	u := &domain.User{
		ID:              domain.NewUserID(uuid.New()),
		Email:           input.Email,
		PasswordHash:    hash,
		Name:            input.Name,
		Role:            role,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	Email           *string
	Name            *string
	NewPassword     *string
	CurrentPassword *string
}

// UpdateProfile changes email, name or password of the calling user. A
// password change requires the current password to match.
func (s *Service) UpdateProfile(ctx context.Context, userID domain.UserID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	upd := ports.UserUpdate{Name: input.Name}
	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.users.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domerrors.ErrEmailTaken
		}
		upd.Email = input.Email
	}
	if input.NewPassword != nil {
		if input.CurrentPassword == nil || !s.hasher.Verify(*input.CurrentPassword, user.PasswordHash) {
			return nil, domerrors.ErrInvalidCredentials
		}
		hash, err := s.hasher.Hash(*input.NewPassword)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	if err := s.users.Update(ctx, userID, upd); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Delete removes a user. Accounts holding an elevated system role are
// protected from deletion.
func (s *Service) Delete(ctx context.Context, userID domain.UserID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if user.Role.OneOf(domain.SystemRoleAdmin, domain.SystemRoleOwner) {
		return domerrors.ErrProtectedUser
	}
	return s.users.Delete(ctx, userID)
}

// List returns users, paginated.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return s.users.List(ctx, limit, offset)
}
