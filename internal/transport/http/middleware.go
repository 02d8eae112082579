package httptransport

import (
	"net/http"

	"vouch/internal/session"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// Authenticate validates the session cookie and stores the logged-in username
// in the request context. Requests without a valid session are rejected.
func Authenticate(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := sessions.FromRequest(r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			ctx := requestcontext.WithUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
