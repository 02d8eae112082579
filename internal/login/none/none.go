// Package none is a debugging authentication provider that accepts any
// username without a credential check. Never enable it in production; it
// reports itself as not production-ready so the UI can warn.
package none

import (
	"context"
	"log/slog"

	"vouch/internal/login"
)

// Provider authenticates on username alone.
type Provider struct {
	logger *slog.Logger
}

// New constructs the provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// Fields drops the password descriptor; only a username is collected.
func (p *Provider) Fields() []login.Field {
	fields := login.BaseFields()
	return login.SortFields(fields[:1])
}

// Authenticate succeeds for any non-empty username and logs the unchecked
// authentication.
func (p *Provider) Authenticate(ctx context.Context, form map[string]string) login.Outcome {
	username := login.NormalizeUsername(form["username"])
	if username == "" {
		return login.Outcome{Message: "Username is required."}
	}
	p.logger.WarnContext(ctx, "authenticating with no password check", "username", username)
	return login.Outcome{Username: username, OK: true}
}

// ProductionReady is always false for this provider.
func (p *Provider) ProductionReady() bool { return false }
