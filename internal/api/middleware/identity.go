package middleware

import (
	"context"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated user.
func WithIdentity(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFrom returns the user attached by Authenticate, if any.
func IdentityFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(identityKey{}).(*domain.User)
	return user, ok && user != nil
}
