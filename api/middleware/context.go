package middleware

import (
	"context"

	"github.com/angelmondragon/charmcart-backend/internal/session"
)

type contextKey string

const (
	ctxRequestID contextKey = "request_id"
	ctxSession   contextKey = "cart_session"
)

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// SessionFromContext returns the session opened by the Session middleware.
func SessionFromContext(ctx context.Context) *session.Session {
	if v, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return v
	}
	return nil
}

// WithSession injects the cart session into the context.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}
