package auth

import (
	"context"

	pkgerrors "taskflow-backend/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user_context"

// UserContext carries the authenticated user's identity through a request
type UserContext struct {
	UserID string
	Email  string
}

// WithUserContext attaches the authenticated user to the context
func WithUserContext(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (UserContext, error) {
	user, ok := ctx.Value(userContextKey).(UserContext)
	if !ok || user.UserID == "" {
		return UserContext{}, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
