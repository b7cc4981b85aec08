package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/user"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type UsersHandler struct {
	svc      *user.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewUsersHandler(svc *user.Service, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, validate: validator.New(), log: log}
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		Name     string `json:"name" validate:"max=128"`
		Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN OWNER"`
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
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	u, err := h.svc.Create(r.Context(), user.CreateInput{
		Email:    email,
		Password: password,
		Name:     body.Name,
		Role:     domain.SystemRole(body.Role),
	})
	if err != nil {
		writeDomainErr(w, h.log, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, userToJSON(u))
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	users, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainErr(w, h.log, "list users", err)
		return
	}
	out := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, userToJSON(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserFromContext(r.Context())
	var body struct {
		Email           *string `json:"email" validate:"omitempty,email,max=254"`
		Name            *string `json:"name" validate:"omitempty,max=128"`
		NewPassword     *string `json:"newPassword" validate:"omitempty,min=8,max=128"`
		CurrentPassword *string `json:"currentPassword" validate:"omitempty,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if body.Email != nil {
		email := SanitizeEmail(*body.Email)
		if email == "" {
			writeErr(w, http.StatusBadRequest, "", "invalid email")
			return
		}
		body.Email = &email
	}
	u, err := h.svc.UpdateProfile(r.Context(), me.ID, user.UpdateProfileInput{
		Email:           body.Email,
		Name:            body.Name,
		NewPassword:     body.NewPassword,
		CurrentPassword: body.CurrentPassword,
	})
	if err != nil {
		writeDomainErr(w, h.log, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, userToJSON(u))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.svc.Delete(r.Context(), domain.NewUserID(id)); err != nil {
		writeDomainErr(w, h.log, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToJSON(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":                u.ID.String(),
		"email":             u.Email,
		"name":              u.Name,
		"role":              string(u.Role),
		"is_email_verified": u.IsEmailVerified,
		"created_at":        u.CreatedAt,
	}
}
