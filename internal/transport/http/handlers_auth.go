package httptransport

import (
	"fmt"
	"net/http"

	"vouch/internal/login"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// HandleLogin handles POST /api/login. The lockout policy is consulted before
// the provider; failures count toward it and success clears it.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	form := req.Fields
	if form == nil {
		form = map[string]string{}
	}

	username := login.NormalizeUsername(form["username"])
	if username == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "username is required"))
		return
	}
	form["username"] = username

	status, err := h.lockout.Check(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !status.Allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(status.RetryAfter.Seconds())))
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "too many failed login attempts, try again later"))
		return
	}

	outcome := h.login.Authenticate(ctx, form)
	if !outcome.OK {
		if _, err := h.lockout.RecordFailure(ctx, username); err != nil {
			h.logger.ErrorContext(ctx, "failed to record login failure",
				"username", username,
				"error", err,
			)
		}
		h.logger.InfoContext(ctx, "authentication failure",
			"username", username,
			"remote_addr", r.RemoteAddr,
		)
		message := outcome.Message
		if message == "" {
			message = "Login failed."
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, message))
		return
	}

	if err := h.lockout.Clear(ctx, outcome.Username); err != nil {
		h.logger.ErrorContext(ctx, "failed to clear login failures",
			"username", outcome.Username,
			"error", err,
		)
	}
	if err := h.sessions.SetCookie(w, outcome.Username, requestcontext.Now(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "authentication successful",
		"username", outcome.Username,
		"remote_addr", r.RemoteAddr,
	)
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Username: outcome.Username})
}

// HandleLogout handles POST /api/logout. Logging out without a session is not
// an error.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if username, err := h.sessions.FromRequest(r); err == nil {
		h.logger.InfoContext(ctx, "logout", "username", username)
	}
	h.sessions.ClearCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleFields handles GET /api/fields, describing the login form for the
// configured provider.
func (h *Handler) HandleFields(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, fromFields(h.login.Fields(), h.login.ProductionReady()))
}
