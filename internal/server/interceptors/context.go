package interceptors

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// WithIdentity returns a context carrying the authenticated user id.
// Handlers read it via GetUserID or RequireUserID.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// RequireUserID returns the user_id from context, or an Unauthenticated status error when the
// request carried no verified identity.
func RequireUserID(ctx context.Context) (string, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	return userID, nil
}
