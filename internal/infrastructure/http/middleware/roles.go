package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// RequireSystemRoles allows only users whose system role is in roles.
// Must run after Authenticator.
func RequireSystemRoles(roles ...domain.SystemRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
				return
			}
			if !user.Role.OneOf(roles...) {
				writeErr(w, http.StatusForbidden, "forbidden", domerrors.ErrInsufficientRole.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OrgGuard resolves the target organization of a request and checks the
// caller's membership. The organization id is taken from the chi URL params
// given at construction, falling back to the organizationId field of a JSON
// body (which is restored for the handler).
type OrgGuard struct {
	orgs       ports.OrganizationRepository
	paramNames []string
}

func NewOrgGuard(orgs ports.OrganizationRepository, paramNames ...string) *OrgGuard {
	if len(paramNames) == 0 {
		paramNames = []string{"orgId", "id"}
	}
	return &OrgGuard{orgs: orgs, paramNames: paramNames}
}

// RequireMember admits any member of the organization and stores the
// membership in context (see MembershipFromContext).
func (g *OrgGuard) RequireMember(next http.Handler) http.Handler {
	return g.require(nil)(next)
}

// RequireRoles admits only members holding one of the given tenant roles.
func (g *OrgGuard) RequireRoles(roles ...domain.TenantRole) func(http.Handler) http.Handler {
	return g.require(roles)
}

func (g *OrgGuard) require(roles []domain.TenantRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
				return
			}
			orgID, ok := g.resolveOrgID(r)
			if !ok {
				writeErr(w, http.StatusBadRequest, "bad_request", domerrors.ErrOrgIDMissing.Error())
				return
			}
			member, err := g.orgs.GetMember(r.Context(), orgID, user.ID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			if member == nil {
				writeErr(w, http.StatusForbidden, "forbidden", domerrors.ErrNotOrgMember.Error())
				return
			}
			if len(roles) > 0 && !member.Role.OneOf(roles...) {
				writeErr(w, http.StatusForbidden, "forbidden", domerrors.ErrInsufficientRole.Error())
				return
			}
			ctx := WithMembership(r.Context(), member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *OrgGuard) resolveOrgID(r *http.Request) (domain.OrganizationID, bool) {
	for _, name := range g.paramNames {
		if raw := chi.URLParam(r, name); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return domain.OrganizationID{}, false
			}
			return domain.NewOrganizationID(id), true
		}
	}
	return orgIDFromBody(r)
}

// orgIDFromBody peeks organizationId out of a JSON body and puts the bytes
// back so the handler can decode the request again.
func orgIDFromBody(r *http.Request) (domain.OrganizationID, bool) {
	if r.Body == nil {
		return domain.OrganizationID{}, false
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return domain.OrganizationID{}, false
	}
	var body struct {
		OrganizationID string `json:"organizationId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.OrganizationID == "" {
		return domain.OrganizationID{}, false
	}
	id, err := uuid.Parse(body.OrganizationID)
	if err != nil {
		return domain.OrganizationID{}, false
	}
	return domain.NewOrganizationID(id), true
}
