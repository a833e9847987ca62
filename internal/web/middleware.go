package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the name of the opaque session token cookie.
const SessionCookie = "session"

// Sessions is the server-side session backend the web layer depends on.
// *redis.SessionStore is the production implementation.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Destroy(ctx context.Context, token string) error
	SetFlash(ctx context.Context, token, msg string) error
	PopFlash(ctx context.Context, token string) string
}

type contextKey string

const (
	contextKeyUserID contextKey = "userID"
	contextKeyToken  contextKey = "sessionToken"
)

// NoCache disables client and proxy caching on every response.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// RequireLogin guards protected routes: it resolves the session cookie to a
// user id and injects it into the request context, or redirects to /login.
func RequireLogin(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
			ctx = context.WithValue(ctx, contextKeyToken, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromCtx(ctx context.Context) uuid.UUID {
	v, _ := ctx.Value(contextKeyUserID).(uuid.UUID)
	return v
}

func TokenFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyToken).(string)
	return v
}
