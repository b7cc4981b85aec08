package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	// Conflict
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrOrgNameTaken      = errors.New("organization with this name already exists")
	ErrAlreadyMember     = errors.New("user is already a member of this organization")
	ErrTokenIDExists     = errors.New("token id already exists, please authenticate again")
	ErrInvitationPending = errors.New("invitation already sent and still valid")
	ErrInvitationUsed    = errors.New("invitation already accepted")

	// Bad request
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrVerificationPending = errors.New("verification link is still valid, check your email")
	ErrVerificationInvalid = errors.New("invalid or expired verification token")
	ErrOrgIDMissing        = errors.New("organization id missing from request")

	// Unauthorized
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")

	// Forbidden
	ErrNotOrgMember     = errors.New("you are not a member of this organization")
	ErrInsufficientRole = errors.New("insufficient role for this action")
	ErrNotOrgOwner      = errors.New("only the organization owner can do this")
	ErrProtectedUser    = errors.New("users with an elevated role cannot be deleted")

	// Not found
	ErrUserNotFound       = errors.New("user not found")
	ErrOrgNotFound        = errors.New("organization not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrTaskNotFound       = errors.New("task not found")

	// Gone
	ErrInvitationExpired = errors.New("invitation has expired")
)
