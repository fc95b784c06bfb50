// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithClaims/FromContext for propagating verified claims via context

package auth

import (
	"context"
)

type claimsKey struct{}

// WithClaims returns a new context carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the claims attached by the middleware, or nil.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}
