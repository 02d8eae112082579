// Package httptransport is the thin JSON layer over the domain services. It
// decodes requests, enforces the session, and delegates; no business logic
// lives here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vouch/internal/session"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/platform/middleware/requestid"
	"vouch/pkg/platform/middleware/requesttime"
)

// HealthCheck probes a backing dependency. A nil check is skipped.
type HealthCheck func(ctx context.Context) error

// NewRouter mounts all endpoints. Login, fields, health and metrics are
// public; everything else requires a valid session cookie.
func NewRouter(h *Handler, sessions *session.Manager, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth(health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Get("/fields", h.HandleFields)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(sessions))
			r.Get("/search", h.HandleSearch)
			r.Post("/verifications", h.HandleCreateVerification)
			r.Get("/verifications", h.HandleListVerifications)
			r.Get("/verifications/{id}", h.HandleGetVerification)
			r.Post("/reports", h.HandleReport)
		})
	})
	return r
}

func handleHealth(health HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Handler wires the JSON endpoints to the domain services.
type Handler struct {
	verifications Verifications
	people        Directory
	login         Login
	lockout       Lockout
	reports       Reporter
	sessions      *session.Manager
	logger        *slog.Logger

	attributeNames []string
}

// New constructs the transport handler. All collaborators are required.
func New(
	verifications Verifications,
	people Directory,
	loginProvider Login,
	lockoutService Lockout,
	reports Reporter,
	sessions *session.Manager,
	logger *slog.Logger,
	attributeNames []string,
) *Handler {
	return &Handler{
		verifications:  verifications,
		people:         people,
		login:          loginProvider,
		lockout:        lockoutService,
		reports:        reports,
		sessions:       sessions,
		logger:         logger,
		attributeNames: attributeNames,
	}
}
