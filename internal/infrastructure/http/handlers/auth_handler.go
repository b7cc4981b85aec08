package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/auth"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	register *auth.Register
	verify   *auth.VerifyEmail
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	validate *validator.Validate
	secure   bool
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.Register, verify *auth.VerifyEmail, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		verify:   verify,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		validate: validator.New(),
		secure:   secureCookies,
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		Name     string `json:"name" validate:"max=128"`
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
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     body.Name,
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", "", false, err.Error())
		middleware.RecordAuthAttempt("register", false)
		writeDomainErr(w, h.log, "register", err)
		return
	}
	AuditLog(h.log, r, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	if result.Resent {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "verification email resent, check your inbox",
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         result.User.ID.String(),
		"email":      result.User.Email,
		"created_at": result.User.CreatedAt,
		"message":    "verification email sent, check your inbox",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.verify.Execute(r.Context(), auth.VerifyEmailInput{Token: body.Token})
	if err != nil {
		AuditLog(h.log, r, "user.verify_email", "", false, err.Error())
		middleware.RecordAuthAttempt("verify_email", false)
		writeDomainErr(w, h.log, "verify email", err)
		return
	}
	AuditLog(h.log, r, "user.verify_email", "", true, "")
	middleware.RecordAuthAttempt("verify_email", true)
	h.setRefreshCookie(w, result.Tokens)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": result.Tokens.AccessToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
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
	result, err := h.login.Execute(r.Context(), auth.LoginInput{Email: email, Password: password})
	if err != nil {
		AuditLog(h.log, r, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, h.log, "login", err)
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	h.setRefreshCookie(w, result.Tokens)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.Tokens.AccessToken,
		"user": map[string]interface{}{
			"id":    result.User.ID.String(),
			"email": result.User.Email,
			"name":  result.User.Name,
		},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, "missing refresh token")
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: cookie.Value})
	if err != nil {
		AuditLog(h.log, r, "auth.refresh", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		writeDomainErr(w, h.log, "refresh", err)
		return
	}
	AuditLog(h.log, r, "auth.refresh", "", true, "")
	middleware.RecordAuthAttempt("refresh", true)
	h.setRefreshCookie(w, result.Tokens)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": result.Tokens.AccessToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	if err := h.logout.Execute(r.Context(), user.ID); err != nil {
		AuditLog(h.log, r, "user.logout", user.ID.String(), false, err.Error())
		writeDomainErr(w, h.log, "logout", err)
		return
	}
	AuditLog(h.log, r, "user.logout", user.ID.String(), true, "")
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(time.Until(pair.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
