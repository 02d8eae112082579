// Package config loads and validates process configuration from environment
// variables. Configuration errors are fatal at startup: no component is
// constructed from an invalid section.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the root configuration for the vouch server.
type Config struct {
	Server       Server       `envPrefix:"VOUCH_"`
	Database     Database     `envPrefix:"VOUCH_DB_"`
	Redis        Redis        `envPrefix:"VOUCH_REDIS_"`
	Verification Verification `envPrefix:"VOUCH_VERIFICATION_"`
	Login        Login        `envPrefix:"VOUCH_LOGIN_"`
	Directory    Directory    `envPrefix:"VOUCH_DIRECTORY_"`
	Lockout      Lockout      `envPrefix:"VOUCH_LOCKOUT_"`
	Report       Report       `envPrefix:"VOUCH_REPORT_"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionKey     string        `env:"SESSION_KEY,required"`
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"10m"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	URL string `env:"URL,required"`
}

// Redis holds optional Redis settings. An empty URL disables Redis and the
// login lockout falls back to its in-memory store.
type Redis struct {
	URL string `env:"URL"`
}

// Verification controls shared secret generation and record lifetime.
type Verification struct {
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"300s"`
	SecretLength   int           `env:"SECRET_LENGTH" envDefault:"8"`
	VariableLength bool          `env:"VARIABLE_LENGTH" envDefault:"true"`
}

// Login selects and configures the authentication provider.
type Login struct {
	Provider string `env:"PROVIDER" envDefault:"none"`

	// RADIUS provider settings; required only when Provider is "radius".
	RadiusAddr          string        `env:"RADIUS_ADDR"`
	RadiusSecret        string        `env:"RADIUS_SECRET"`
	RadiusNASIdentifier string        `env:"RADIUS_NAS_IDENTIFIER"`
	RadiusNASIPAddress  string        `env:"RADIUS_NAS_IP_ADDRESS"`
	RadiusTimeout       time.Duration `env:"RADIUS_TIMEOUT" envDefault:"5s"`
}

// Directory selects and configures the identity provider.
type Directory struct {
	Provider       string   `env:"PROVIDER" envDefault:"ldap"`
	Attributes     []string `env:"ATTRIBUTES" envDefault:"uid,cn"`
	AttributeNames []string `env:"ATTRIBUTE_NAMES" envDefault:"Username,Name"`

	// StaticPeople seeds the "static" provider, one "uid:name" entry per
	// element. Useful for demos and smoke tests only.
	StaticPeople []string `env:"STATIC_PEOPLE"`

	// LDAP provider settings; required only when Provider is "ldap".
	LDAPURL       string        `env:"LDAP_URL"`
	LDAPFilter    []string      `env:"LDAP_FILTER" envDefault:"uid,cn"`
	LDAPSizeLimit int           `env:"LDAP_SIZE_LIMIT" envDefault:"250"`
	LDAPPagedSize int           `env:"LDAP_PAGED_SIZE" envDefault:"0"`
	LDAPTimeLimit time.Duration `env:"LDAP_TIME_LIMIT" envDefault:"15s"`
}

// Lockout controls login failure throttling.
type Lockout struct {
	Threshold    int           `env:"THRESHOLD" envDefault:"5"`
	Window       time.Duration `env:"WINDOW" envDefault:"15m"`
	LockDuration time.Duration `env:"LOCK_DURATION" envDefault:"15m"`
}

// Report configures outbound suspicious-activity emails.
type Report struct {
	SMTPAddr string   `env:"SMTP_ADDR" envDefault:"localhost:25"`
	From     string   `env:"FROM" envDefault:"vouch@corp.com"`
	To       []string `env:"TO" envDefault:"vouch@corp.com"`
	Subject  string   `env:"SUBJECT" envDefault:"vouch suspicious activity report"`
}

// FromEnv builds the full configuration from environment variables and
// validates it eagerly so main stays lean.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces cross-field invariants that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Server.SessionTimeout < 30*time.Second {
		return fmt.Errorf("config: session timeout must be at least 30s")
	}
	if c.Verification.SecretLength < 5 || c.Verification.SecretLength > 128 {
		return fmt.Errorf("config: verification secret length must be between 5 and 128 inclusive")
	}
	if c.Verification.Timeout <= 0 {
		return fmt.Errorf("config: verification timeout must be positive")
	}
	if len(c.Directory.Attributes) < 2 {
		return fmt.Errorf("config: directory attributes needs at least id and name entries")
	}
	if len(c.Directory.AttributeNames) != len(c.Directory.Attributes) {
		return fmt.Errorf("config: directory attribute names must match attributes in length")
	}
	if c.Lockout.Threshold < 1 {
		return fmt.Errorf("config: lockout threshold must be at least 1")
	}
	return nil
}
