package auth

import (
	"context"

	"glowapp/models"
)

type ctxKey string

const userKey ctxKey = "glowapp.user"

// WithUser stores the signed-in user in context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the signed-in user if present.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil && user.ID != ""
}

// ContextAuthProvider reads the user that the auth middleware put on the request context.
type ContextAuthProvider struct{}

func (ContextAuthProvider) CurrentUser(ctx context.Context) (*models.User, bool) {
	return UserFromContext(ctx)
}
