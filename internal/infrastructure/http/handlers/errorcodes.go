package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// API error codes returned in JSON { "error": "...", "code": "..." } for
// stable client handling.
const (
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeGone               = "gone"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeInternal           = "internal_error"
)

// domainErrStatus maps a domain sentinel to its HTTP status and error code.
// Unknown errors map to 500 so callers can log before responding.
func domainErrStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domerrors.ErrEmailTaken),
		errors.Is(err, domerrors.ErrOrgNameTaken),
		errors.Is(err, domerrors.ErrAlreadyMember),
		errors.Is(err, domerrors.ErrTokenIDExists),
		errors.Is(err, domerrors.ErrInvitationPending),
		errors.Is(err, domerrors.ErrInvitationUsed):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domerrors.ErrInvalidEmail),
		errors.Is(err, domerrors.ErrVerificationPending),
		errors.Is(err, domerrors.ErrVerificationInvalid),
		errors.Is(err, domerrors.ErrOrgIDMissing):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, domerrors.ErrInvalidCredentials),
		errors.Is(err, domerrors.ErrEmailNotVerified):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, domerrors.ErrInvalidToken):
		return http.StatusUnauthorized, ErrCodeInvalidToken
	case errors.Is(err, domerrors.ErrNotOrgMember),
		errors.Is(err, domerrors.ErrInsufficientRole),
		errors.Is(err, domerrors.ErrNotOrgOwner),
		errors.Is(err, domerrors.ErrProtectedUser):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domerrors.ErrUserNotFound),
		errors.Is(err, domerrors.ErrOrgNotFound),
		errors.Is(err, domerrors.ErrInvitationNotFound),
		errors.Is(err, domerrors.ErrTaskNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domerrors.ErrInvitationExpired):
		return http.StatusGone, ErrCodeGone
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// writeDomainErr maps the error and responds. Unexpected errors are logged
// and hidden behind a generic message.
func writeDomainErr(w http.ResponseWriter, log zerolog.Logger, action string, err error) {
	status, code := domainErrStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("action", action).Msg("request failed")
		writeErr(w, status, code, "internal error")
		return
	}
	writeErr(w, status, code, err.Error())
}
