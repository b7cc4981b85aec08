package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
)

// TokenSigner implements ports.TokenSigner with HS256, using separate
// secrets for access and refresh tokens.
type TokenSigner struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

func NewTokenSigner(accessSecret, refreshSecret, issuer string) *TokenSigner {
	return &TokenSigner{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}
}

func (t *TokenSigner) IssueAccessToken(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.accessSecret)
}

func (t *TokenSigner) IssueRefreshToken(userID, jti string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.refreshSecret)
}

func (t *TokenSigner) VerifyAccessToken(tokenString string) (userID, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, t.keyFunc(t.accessSecret))
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	return claims.Subject, claims.Role, nil
}

func (t *TokenSigner) VerifyRefreshToken(tokenString string) (userID, jti string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &refreshClaims{}, t.keyFunc(t.refreshSecret))
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(*refreshClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	if claims.ID == "" {
		return "", "", errors.New("missing jti claim")
	}
	return claims.Subject, claims.ID, nil
}

func (t *TokenSigner) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}
}

var _ ports.TokenSigner = (*TokenSigner)(nil)
