// Package radius authenticates credentials against a RADIUS server.
package radius

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"

	"vouch/internal/login"
)

// Config carries the provider's settings. All values are validated eagerly by
// New.
type Config struct {
	// Addr is the host:port of the RADIUS server.
	Addr string
	// Secret is the shared secret for the client.
	Secret string
	// NASIdentifier is sent as the NAS-Identifier attribute.
	NASIdentifier string
	// NASIPAddress is sent as the NAS-IP-Address attribute.
	NASIPAddress string
	// Timeout bounds the whole exchange.
	Timeout time.Duration
}

// Provider sends Access-Requests to the configured server. Network failures
// and timeouts are failure outcomes with a logged error; only an explicit
// Access-Accept authenticates.
type Provider struct {
	cfg   Config
	nasIP net.IP
	log   *slog.Logger
}

// New validates cfg and constructs the provider.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("radius: server address is required")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("radius: shared secret is required")
	}
	if cfg.NASIdentifier == "" {
		return nil, fmt.Errorf("radius: nas identifier is required")
	}
	nasIP := net.ParseIP(cfg.NASIPAddress)
	if nasIP == nil {
		return nil, fmt.Errorf("radius: nas ip address %q is invalid", cfg.NASIPAddress)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("radius: timeout must be positive")
	}
	return &Provider{cfg: cfg, nasIP: nasIP, log: logger}, nil
}

// Fields uses the base username and password descriptors unchanged.
func (p *Provider) Fields() []login.Field {
	return login.SortFields(login.BaseFields())
}

// Authenticate exchanges an Access-Request with the configured server.
func (p *Provider) Authenticate(ctx context.Context, form map[string]string) login.Outcome {
	username := login.NormalizeUsername(form["username"])
	if username == "" {
		p.log.ErrorContext(ctx, "username field missing from authentication form")
		return login.Outcome{Message: "Username is required."}
	}
	password, ok := form["password"]
	if !ok || password == "" {
		p.log.ErrorContext(ctx, "password field missing from authentication form", "username", username)
		return login.Outcome{Username: username, Message: "Password is required."}
	}

	packet := radius.New(radius.CodeAccessRequest, []byte(p.cfg.Secret))
	if err := rfc2865.UserName_SetString(packet, username); err != nil {
		p.log.ErrorContext(ctx, "could not set radius user name", "error", err)
		return login.Outcome{Username: username, Message: "An error has occurred. Please try again."}
	}
	if err := rfc2865.UserPassword_SetString(packet, password); err != nil {
		p.log.ErrorContext(ctx, "could not set radius user password", "error", err)
		return login.Outcome{Username: username, Message: "An error has occurred. Please try again."}
	}
	if err := rfc2865.NASIdentifier_SetString(packet, p.cfg.NASIdentifier); err != nil {
		p.log.ErrorContext(ctx, "could not set radius nas identifier", "error", err)
		return login.Outcome{Username: username, Message: "An error has occurred. Please try again."}
	}
	if err := rfc2865.NASIPAddress_Set(packet, p.nasIP); err != nil {
		p.log.ErrorContext(ctx, "could not set radius nas ip address", "error", err)
		return login.Outcome{Username: username, Message: "An error has occurred. Please try again."}
	}

	p.log.DebugContext(ctx, "attempting radius authentication",
		"server", p.cfg.Addr,
		"username", username,
		"nas_identifier", p.cfg.NASIdentifier,
	)

	exchangeCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	response, err := radius.Exchange(exchangeCtx, packet, p.cfg.Addr)
	if err != nil {
		// Timeouts here usually mean a wrong server address or shared
		// secret; the server drops requests it cannot authenticate.
		p.log.ErrorContext(ctx, "radius exchange failed",
			"server", p.cfg.Addr,
			"username", username,
			"error", err,
		)
		return login.Outcome{Username: username, Message: "An error has occurred. Please try again."}
	}
	return login.Outcome{Username: username, OK: response.Code == radius.CodeAccessAccept}
}

// ProductionReady is true; this provider performs genuine verification.
func (p *Provider) ProductionReady() bool { return true }
