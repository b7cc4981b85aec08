package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/invitation"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

type InvitationsHandler struct {
	send     *invitation.Send
	accept   *invitation.Accept
	validate *validator.Validate
	log      zerolog.Logger
}

func NewInvitationsHandler(send *invitation.Send, accept *invitation.Accept, log zerolog.Logger) *InvitationsHandler {
	return &InvitationsHandler{send: send, accept: accept, validate: validator.New(), log: log}
}

func (h *InvitationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	orgID, ok := parseOrgID(w, r, "orgId")
	if !ok {
		return
	}
	var body struct {
		Email         string `json:"email" validate:"required,email,max=254"`
		Role          string `json:"role" validate:"omitempty,oneof=OWNER ADMIN MEMBER"`
		ExpiresInDays int    `json:"expiresInDays" validate:"omitempty,min=1,max=90"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	if email == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email")
		return
	}
	result, err := h.send.Execute(r.Context(), user.ID, invitation.SendInput{
		OrganizationID: orgID,
		Email:          email,
		Role:           domain.TenantRole(body.Role),
		ExpiresInDays:  body.ExpiresInDays,
	})
	if err != nil {
		// Inviting an address that already belongs to the organization is a
		// caller mistake, not a conflict with another invitation.
		if errors.Is(err, domerrors.ErrAlreadyMember) {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		writeDomainErr(w, h.log, "send invitation", err)
		return
	}
	inv := result.Invitation
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":              inv.ID.String(),
		"organization_id": inv.OrganizationID.String(),
		"email":           inv.Email,
		"role":            string(inv.Role),
		"expires_at":      inv.ExpiresAt,
		"created_at":      inv.CreatedAt,
	})
}

func (h *InvitationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	var body struct {
		Token string `json:"token" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.accept.Execute(r.Context(), user.ID, invitation.AcceptInput{Token: body.Token})
	if err != nil {
		writeDomainErr(w, h.log, "accept invitation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"organization_id": result.OrganizationID.String(),
		"message":         "invitation accepted",
	})
}
