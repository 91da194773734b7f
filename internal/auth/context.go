package auth

import "context"

type contextKey struct{}

// Identity is the caller a verified bearer token speaks for.
type Identity struct {
	UserID string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the authenticated user's ID, or "" when the request
// did not pass through the auth gate.
func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID
}
