package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/organization"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

type OrganizationsHandler struct {
	svc      *organization.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewOrganizationsHandler(svc *organization.Service, log zerolog.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{svc: svc, validate: validator.New(), log: log}
}

func (h *OrganizationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	var body struct {
		Name string `json:"name" validate:"required,min=1,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	org, err := h.svc.Create(r.Context(), user.ID, body.Name)
	if err != nil {
		writeDomainErr(w, h.log, "create organization", err)
		return
	}
	writeJSON(w, http.StatusCreated, orgToJSON(org))
}

func (h *OrganizationsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	orgs, err := h.svc.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeDomainErr(w, h.log, "list organizations", err)
		return
	}
	out := make([]map[string]interface{}, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, orgToJSON(org))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrganizationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	org, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, "get organization", err)
		return
	}
	writeJSON(w, http.StatusOK, orgToJSON(org))
}

func (h *OrganizationsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" validate:"required,min=1,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	org, err := h.svc.Rename(r.Context(), id, body.Name)
	if err != nil {
		writeDomainErr(w, h.log, "rename organization", err)
		return
	}
	writeJSON(w, http.StatusOK, orgToJSON(org))
}

func (h *OrganizationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	id, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), user.ID, id); err != nil {
		writeDomainErr(w, h.log, "delete organization", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrganizationsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	orgID, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		UserID string `json:"userId" validate:"required,uuid"`
		Role   string `json:"role" validate:"omitempty,oneof=OWNER ADMIN MEMBER"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	memberID, err := uuid.Parse(body.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	member, err := h.svc.AddMember(r.Context(), user.ID, orgID, domain.NewUserID(memberID), domain.TenantRole(body.Role))
	if err != nil {
		writeDomainErr(w, h.log, "add member", err)
		return
	}
	writeJSON(w, http.StatusCreated, memberToJSON(member))
}

func (h *OrganizationsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(r.Context(), orgID)
	if err != nil {
		writeDomainErr(w, h.log, "list members", err)
		return
	}
	out := make([]map[string]interface{}, 0, len(members))
	for _, m := range members {
		out = append(out, memberToJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func parseOrgID(w http.ResponseWriter, r *http.Request, param string) (domain.OrganizationID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid organization id")
		return domain.OrganizationID{}, false
	}
	return domain.NewOrganizationID(id), true
}

func orgToJSON(org *domain.Organization) map[string]interface{} {
	return map[string]interface{}{
		"id":           org.ID.String(),
		"name":         org.Name,
		"owner_id":     org.OwnerID.String(),
		"member_count": org.MemberCount,
		"created_at":   org.CreatedAt,
	}
}

func memberToJSON(m *domain.Membership) map[string]interface{} {
	return map[string]interface{}{
		"user_id":         m.UserID.String(),
		"organization_id": m.OrganizationID.String(),
		"role":            string(m.Role),
		"created_at":      m.CreatedAt,
	}
}
