package auth

import (
	"context"

	"github.com/carlot/carlot/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ContextWithClaims attaches verified claims to the context.
func ContextWithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves claims from the context.
// Returns nil if not present.
func ClaimsFromContext(ctx context.Context) *model.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	if !ok {
		return nil
	}
	return claims
}

// MustClaimsFromContext retrieves claims from the context.
// Panics if not present (use only behind the auth middleware).
func MustClaimsFromContext(ctx context.Context) *model.Claims {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		panic("auth claims not found - ensure auth middleware is applied")
	}
	return claims
}
