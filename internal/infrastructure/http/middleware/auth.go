package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
)

// Authenticator validates the bearer JWT, loads the user and sets it in
// context (see UserFromContext).
type Authenticator struct {
	signer ports.TokenSigner
	users  ports.UserRepository
}

func NewAuthenticator(signer ports.TokenSigner, users ports.UserRepository) *Authenticator {
	return &Authenticator{signer: signer, users: users}
}

func (m *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		userID, _, err := m.signer.VerifyAccessToken(tokenString)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		id, err := uuid.Parse(userID)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		// The user row, not the claim, is authoritative for role and existence.
		user, err := m.users.GetByID(r.Context(), domain.NewUserID(id))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if user == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
