package http

import (
	"context"
	"net/http"

	"github.com/Awaddd/bazaar-backend/pkg/httputil"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionHeader is the header cart requests identify themselves with. The
// value is an opaque client-chosen token with no server-side lifecycle.
const SessionHeader = "X-Session-Id"

// RequireSession rejects cart requests that carry no session header.
// Absence of the header is a client error, not a missing resource.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "INVALID_INPUT",
					Message: "missing " + SessionHeader + " header",
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session set by RequireSession.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey).(string); ok {
		return id
	}
	return ""
}
