package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type memUsers struct {
	byID map[domain.UserID]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[domain.UserID]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByVerifyToken(context.Context, string) (*domain.User, error) {
	return nil, nil
}

func (m *memUsers) SetVerifyToken(context.Context, domain.UserID, string, time.Time) error {
	return nil
}

func (m *memUsers) MarkEmailVerified(context.Context, domain.UserID) error { return nil }

func (m *memUsers) Update(_ context.Context, id domain.UserID, upd ports.UserUpdate) error {
	u, ok := m.byID[id]
	if !ok {
		return domerrors.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *memUsers) Delete(_ context.Context, id domain.UserID) error {
	delete(m.byID, id)
	return nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.byID {
		cp := *u
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Verify(password, hash string) bool    { return "hashed:"+password == hash }

var (
	_ ports.UserRepository = (*memUsers)(nil)
	_ ports.PasswordHasher = plainHasher{}
)

func newUserService() (*Service, *memUsers) {
	users := newMemUsers()
	return NewService(users, plainHasher{}), users
}

func strPtr(v string) *string { return &v }

func TestCreateProvisionsVerifiedUser(t *testing.T) {
	svc, _ := newUserService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "admin@example.com",
		Password: "s3cret-pw",
		Name:     "Admin",
	})
	require.NoError(t, err)
	assert.True(t, created.IsEmailVerified, "admin-created accounts skip verification")
	assert.Equal(t, domain.SystemRoleUser, created.Role, "role defaults to USER")
	assert.Equal(t, "hashed:s3cret-pw", created.PasswordHash)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Email: "dup@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Email: "dup@example.com", Password: "pw"})
	assert.ErrorIs(t, err, domerrors.ErrEmailTaken)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Email: "taken@example.com", Password: "pw"})
	require.NoError(t, err)
	me, err := svc.Create(ctx, CreateInput{Email: "me@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, me.ID, UpdateProfileInput{Email: strPtr("taken@example.com")})
	assert.ErrorIs(t, err, domerrors.ErrEmailTaken)

	// Re-submitting the current address is not a conflict.
	updated, err := svc.UpdateProfile(ctx, me.ID, UpdateProfileInput{
		Email: strPtr("me@example.com"),
		Name:  strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateProfilePasswordRequiresCurrent(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	me, err := svc.Create(ctx, CreateInput{Email: "me@example.com", Password: "old-pw"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, me.ID, UpdateProfileInput{NewPassword: strPtr("new-pw")})
	assert.ErrorIs(t, err, domerrors.ErrInvalidCredentials, "missing current password")

	_, err = svc.UpdateProfile(ctx, me.ID, UpdateProfileInput{
		NewPassword:     strPtr("new-pw"),
		CurrentPassword: strPtr("wrong"),
	})
	assert.ErrorIs(t, err, domerrors.ErrInvalidCredentials)

	updated, err := svc.UpdateProfile(ctx, me.ID, UpdateProfileInput{
		NewPassword:     strPtr("new-pw"),
		CurrentPassword: strPtr("old-pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-pw", updated.PasswordHash)
}

func TestDeleteProtectsElevatedRoles(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()
	admin, err := svc.Create(ctx, CreateInput{
		Email: "admin@example.com", Password: "pw", Role: domain.SystemRoleAdmin,
	})
	require.NoError(t, err)
	regular, err := svc.Create(ctx, CreateInput{Email: "user@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, admin.ID), domerrors.ErrProtectedUser)
	require.NoError(t, svc.Delete(ctx, regular.ID))
	got, err := users.GetByID(ctx, regular.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, svc.Delete(ctx, domain.NewUserID(uuid.New())), domerrors.ErrUserNotFound)
}

func TestListPagination(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Create(ctx, CreateInput{Email: email, Password: "pw"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
