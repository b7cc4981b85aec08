package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	Tokens *TokenPair
}

// Refresh rotates a refresh token: the presented jti is revoked before the
// replacement is minted, so a stolen token is good for at most one use.
type Refresh struct {
	signer ports.TokenSigner
	store  ports.TokenStore
	tokens *Tokens
}

func NewRefresh(signer ports.TokenSigner, store ports.TokenStore, tokens *Tokens) *Refresh {
	return &Refresh{signer: signer, store: store, tokens: tokens}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	userIDStr, jtiStr, err := uc.signer.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	jti, err := uuid.Parse(jtiStr)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	// The ledger is authoritative: a signed, unexpired JWT whose row is
	// missing, expired or revoked is rejected all the same.
	record, err := uc.store.GetByID(ctx, jti)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Active(time.Now()) {
		return nil, domerrors.ErrInvalidToken
	}
	revoked, err := uc.store.Revoke(ctx, jti)
	if err != nil {
		return nil, err
	}
	if !revoked {
		// Lost a race against a concurrent refresh of the same token.
		return nil, domerrors.ErrInvalidToken
	}
	pair, err := uc.tokens.Generate(ctx, domain.NewUserID(userID))
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Tokens: pair}, nil
}
