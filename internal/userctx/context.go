package userctx

import "context"

type contextKey string

const clientIDContextKey contextKey = "client_id"

// WithClientID stores the session's client id, the subject of its token.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

func GetClientID(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientIDContextKey).(string)
	return clientID, ok && clientID != ""
}
