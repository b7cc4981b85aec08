package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
)

// fakeSigner accepts tokens of the form "ok:<uuid>".
type fakeSigner struct{}

func (fakeSigner) IssueAccessToken(userID, _ string, _ time.Duration) (string, error) {
	return "ok:" + userID, nil
}
func (fakeSigner) IssueRefreshToken(string, string, time.Duration) (string, error) { return "", nil }
func (fakeSigner) VerifyAccessToken(tokenString string) (string, string, error) {
	if !strings.HasPrefix(tokenString, "ok:") {
		return "", "", errors.New("bad token")
	}
	return strings.TrimPrefix(tokenString, "ok:"), "", nil
}
func (fakeSigner) VerifyRefreshToken(string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

type fakeUsers struct {
	byID map[domain.UserID]*domain.User
}

func (f *fakeUsers) Create(context.Context, *domain.User) error               { return nil }
func (f *fakeUsers) GetByEmail(context.Context, string) (*domain.User, error) { return nil, nil }
func (f *fakeUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	return f.byID[id], nil
}
func (f *fakeUsers) GetByVerifyToken(context.Context, string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUsers) SetVerifyToken(context.Context, domain.UserID, string, time.Time) error {
	return nil
}
func (f *fakeUsers) MarkEmailVerified(context.Context, domain.UserID) error        { return nil }
func (f *fakeUsers) Update(context.Context, domain.UserID, ports.UserUpdate) error { return nil }
func (f *fakeUsers) Delete(context.Context, domain.UserID) error                   { return nil }
func (f *fakeUsers) List(context.Context, int, int) ([]*domain.User, error)        { return nil, nil }

type memberEntry struct {
	orgID  domain.OrganizationID
	userID domain.UserID
	role   domain.TenantRole
}

type fakeOrgs struct {
	members []memberEntry
}

func (f *fakeOrgs) Create(context.Context, *domain.Organization) error { return nil }
func (f *fakeOrgs) GetByID(context.Context, domain.OrganizationID) (*domain.Organization, error) {
	return nil, nil
}
func (f *fakeOrgs) GetByName(context.Context, string) (*domain.Organization, error) { return nil, nil }
func (f *fakeOrgs) ListForUser(context.Context, domain.UserID) ([]*domain.Organization, error) {
	return nil, nil
}
func (f *fakeOrgs) UpdateName(context.Context, domain.OrganizationID, string) error { return nil }
func (f *fakeOrgs) Delete(context.Context, domain.OrganizationID) error             { return nil }
func (f *fakeOrgs) GetMember(_ context.Context, orgID domain.OrganizationID, userID domain.UserID) (*domain.Membership, error) {
	for _, m := range f.members {
		if m.orgID == orgID && m.userID == userID {
			return &domain.Membership{OrganizationID: orgID, UserID: userID, Role: m.role}, nil
		}
	}
	return nil, nil
}
func (f *fakeOrgs) AddMember(context.Context, domain.OrganizationID, domain.UserID, domain.TenantRole) error {
	return nil
}
func (f *fakeOrgs) ListMembers(context.Context, domain.OrganizationID) ([]*domain.Membership, error) {
	return nil, nil
}
func (f *fakeOrgs) IsMemberByEmail(context.Context, domain.OrganizationID, string) (bool, error) {
	return false, nil
}

var (
	_ ports.TokenSigner            = fakeSigner{}
	_ ports.UserRepository         = (*fakeUsers)(nil)
	_ ports.OrganizationRepository = (*fakeOrgs)(nil)
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func TestAuthenticator(t *testing.T) {
	userID := domain.NewUserID(uuid.New())
	users := &fakeUsers{byID: map[domain.UserID]*domain.User{
		userID: {ID: userID, Email: "a@example.com", Role: domain.SystemRoleUser},
	}}
	auth := NewAuthenticator(fakeSigner{}, users)

	var seen *domain.User
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", "Bearer ok:" + uuid.NewString(), http.StatusUnauthorized},
		{"valid", "Bearer ok:" + userID.String(), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK && (seen == nil || seen.ID != userID) {
				t.Fatalf("handler did not receive the authenticated user")
			}
		})
	}
}

func TestRequireSystemRoles(t *testing.T) {
	mw := RequireSystemRoles(domain.SystemRoleAdmin, domain.SystemRoleOwner)
	handler := mw(http.HandlerFunc(okHandler))

	serve := func(user *domain.User) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := serve(nil); got != http.StatusUnauthorized {
		t.Fatalf("no user: status = %d, want 401", got)
	}
	if got := serve(&domain.User{Role: domain.SystemRoleUser}); got != http.StatusForbidden {
		t.Fatalf("USER: status = %d, want 403", got)
	}
	if got := serve(&domain.User{Role: domain.SystemRoleAdmin}); got != http.StatusOK {
		t.Fatalf("ADMIN: status = %d, want 200", got)
	}
}

func newGuardRouter(guard *OrgGuard, user *domain.User, elevated bool) http.Handler {
	withUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
	mw := guard.RequireMember
	if elevated {
		mw = guard.RequireRoles(domain.TenantRoleAdmin, domain.TenantRoleOwner)
	}
	r := chi.NewRouter()
	r.Use(withUser)
	r.With(mw).Get("/organization/{id}", okHandler)
	r.With(mw).Post("/tasks", func(w http.ResponseWriter, r *http.Request) {
		// The guard must hand the body back intact.
		raw, err := io.ReadAll(r.Body)
		if err != nil || len(raw) == 0 {
			http.Error(w, "body lost", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestOrgGuardMembership(t *testing.T) {
	orgID := domain.NewOrganizationID(uuid.New())
	member := domain.NewUserID(uuid.New())
	outsider := domain.NewUserID(uuid.New())
	orgs := &fakeOrgs{members: []memberEntry{{orgID, member, domain.TenantRoleMember}}}
	guard := NewOrgGuard(orgs)

	get := func(user domain.UserID, elevated bool, path string) int {
		router := newGuardRouter(guard, &domain.User{ID: user}, elevated)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	orgPath := "/organization/" + orgID.String()
	if got := get(member, false, orgPath); got != http.StatusOK {
		t.Fatalf("member: status = %d, want 200", got)
	}
	if got := get(outsider, false, orgPath); got != http.StatusForbidden {
		t.Fatalf("outsider: status = %d, want 403", got)
	}
	if got := get(member, true, orgPath); got != http.StatusForbidden {
		t.Fatalf("plain member on elevated route: status = %d, want 403", got)
	}
	if got := get(member, false, "/organization/not-a-uuid"); got != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", got)
	}
}

func TestOrgGuardBodyFallback(t *testing.T) {
	orgID := domain.NewOrganizationID(uuid.New())
	member := domain.NewUserID(uuid.New())
	orgs := &fakeOrgs{members: []memberEntry{{orgID, member, domain.TenantRoleMember}}}
	guard := NewOrgGuard(orgs)
	router := newGuardRouter(guard, &domain.User{ID: member}, false)

	post := func(payload map[string]string) int {
		raw, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := post(map[string]string{"organizationId": orgID.String(), "title": "x"}); got != http.StatusOK {
		t.Fatalf("body org id: status = %d, want 200", got)
	}
	if got := post(map[string]string{"title": "x"}); got != http.StatusBadRequest {
		t.Fatalf("no org id anywhere: status = %d, want 400", got)
	}
}

func TestOrgGuardStoresMembership(t *testing.T) {
	orgID := domain.NewOrganizationID(uuid.New())
	member := domain.NewUserID(uuid.New())
	orgs := &fakeOrgs{members: []memberEntry{{orgID, member, domain.TenantRoleAdmin}}}
	guard := NewOrgGuard(orgs)

	var seen *domain.Membership
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithUser(req.Context(), &domain.User{ID: member})))
		})
	})
	r.With(guard.RequireMember).Get("/organization/{id}", func(w http.ResponseWriter, req *http.Request) {
		seen = MembershipFromContext(req.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/organization/"+orgID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen == nil || seen.Role != domain.TenantRoleAdmin {
		t.Fatalf("membership not propagated: %+v", seen)
	}
}
