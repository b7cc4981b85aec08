package ports

import "time"

// PasswordHasher hashes and verifies passwords. Verification is constant-time.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenSigner signs and validates JWTs. Access and refresh tokens are signed
// with distinct secrets; a refresh token carries a jti, an access token a role.
type TokenSigner interface {
	IssueAccessToken(userID, role string, ttl time.Duration) (string, error)
	IssueRefreshToken(userID, jti string, ttl time.Duration) (string, error)
	VerifyAccessToken(tokenString string) (userID, role string, err error)
	VerifyRefreshToken(tokenString string) (userID, jti string, err error)
}
