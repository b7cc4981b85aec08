package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// In-memory fakes for the ports this package depends on.

type memUsers struct {
	mu    sync.Mutex
	users map[domain.UserID]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[domain.UserID]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domerrors.ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByVerifyToken(_ context.Context, token string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.VerifyToken != nil && *u.VerifyToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) SetVerifyToken(_ context.Context, id domain.UserID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domerrors.ErrUserNotFound
	}
	u.VerifyToken = &token
	u.VerifyExpiresAt = &expiresAt
	return nil
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domerrors.ErrUserNotFound
	}
	u.IsEmailVerified = true
	u.VerifyToken = nil
	u.VerifyExpiresAt = nil
	return nil
}

func (m *memUsers) Update(_ context.Context, id domain.UserID, upd ports.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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
	return nil
}

func (m *memUsers) Delete(_ context.Context, id domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (m *memTokens) Create(_ context.Context, token *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tokens[token.ID]; exists {
		return domerrors.ErrTokenIDExists
	}
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memTokens) GetByID(_ context.Context, jti uuid.UUID) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[jti]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// Revoke is compare-and-swap: only the first caller for a given jti wins.
func (m *memTokens) Revoke(_ context.Context, jti uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[jti]
	if !ok || t.Revoked {
		return false, nil
	}
	now := time.Now()
	t.Revoked = true
	t.RevokedAt = &now
	return true, nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memTokens) DeleteRevoked(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tokens {
		if t.Revoked {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memTokens) activeCount(userID domain.UserID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.Active(time.Now()) {
			n++
		}
	}
	return n
}

// fakeSigner encodes claims into a parseable string instead of a real JWT.
type fakeSigner struct{}

func (fakeSigner) IssueAccessToken(userID, role string, _ time.Duration) (string, error) {
	return "access|" + userID + "|" + role, nil
}

func (fakeSigner) IssueRefreshToken(userID, jti string, _ time.Duration) (string, error) {
	return "refresh|" + userID + "|" + jti, nil
}

func (fakeSigner) VerifyAccessToken(tok string) (string, string, error) {
	parts := strings.Split(tok, "|")
	if len(parts) != 3 || parts[0] != "access" {
		return "", "", errors.New("bad access token")
	}
	return parts[1], parts[2], nil
}

func (fakeSigner) VerifyRefreshToken(tok string) (string, string, error) {
	parts := strings.Split(tok, "|")
	if len(parts) != 3 || parts[0] != "refresh" {
		return "", "", errors.New("bad refresh token")
	}
	return parts[1], parts[2], nil
}

type sentMail struct {
	email   string
	linkURL string
}

type memEnqueuer struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error
}

func (m *memEnqueuer) EnqueueVerificationEmail(_ context.Context, email, linkURL string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentMail{email: email, linkURL: linkURL})
	return nil
}

func (m *memEnqueuer) EnqueueInvitationEmail(_ context.Context, email, _, _, linkURL string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{email: email, linkURL: linkURL})
	return nil
}

func (m *memEnqueuer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Verify(password, hash string) bool    { return hash == "hashed:"+password }

var (
	_ ports.UserRepository = (*memUsers)(nil)
	_ ports.TokenStore     = (*memTokens)(nil)
	_ ports.TokenSigner    = fakeSigner{}
	_ ports.MailEnqueuer   = (*memEnqueuer)(nil)
	_ ports.PasswordHasher = plainHasher{}
)
