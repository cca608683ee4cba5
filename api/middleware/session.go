package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/charmcart-backend/api/responses"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

// SessionHeader carries the cart session id in both directions.
const SessionHeader = "X-Session-Id"

type sessionOpener interface {
	Open(ctx context.Context, id string) (*session.Session, error)
}

// Session opens (or resumes) the caller's cart session. Requests without
// the header get a fresh session whose id is returned in the response.
func Session(sessions sessionOpener, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			s, err := sessions.Open(ctx, r.Header.Get(SessionHeader))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			w.Header().Set(SessionHeader, s.ID())
			ctx = WithSession(ctx, s)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, s.ID())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
