package middleware

import (
	"context"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
)

type contextKey string

const (
	userContextKey       contextKey = "user"
	membershipContextKey contextKey = "membership"
)

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	v := ctx.Value(userContextKey)
	if v == nil {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// WithMembership injects the resolved organization membership into the context.
func WithMembership(ctx context.Context, m *domain.Membership) context.Context {
	return context.WithValue(ctx, membershipContextKey, m)
}

// MembershipFromContext returns the membership set by the tenant guard, or nil.
func MembershipFromContext(ctx context.Context) *domain.Membership {
	v := ctx.Value(membershipContextKey)
	if v == nil {
		return nil
	}
	m, _ := v.(*domain.Membership)
	return m
}
