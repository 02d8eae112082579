// Package lockout throttles repeated login failures. An identifier that fails
// authentication too many times inside a rolling window is locked out for a
// fixed duration. Successful logins clear the slate.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// Record is the failure state tracked per identifier.
type Record struct {
	Identifier   string
	FailureCount int
	LockedUntil  *time.Time
}

// LockedAt reports whether the record carries an active lock at the given
// instant.
func (r *Record) LockedAt(now time.Time) bool {
	return r.LockedUntil != nil && r.LockedUntil.After(now)
}

// Store tracks failure counts and locks. Implementations must make
// RecordFailure atomic under concurrent callers.
type Store interface {
	// RecordFailure increments the failure count inside the rolling window
	// and returns the updated record. Counts older than the window are
	// discarded before incrementing.
	RecordFailure(ctx context.Context, identifier string, now time.Time, window time.Duration) (*Record, error)

	// Get returns the current record, or nil when the identifier has no
	// tracked failures and no lock. Implementations that expire state
	// out of band may ignore now.
	Get(ctx context.Context, identifier string, now time.Time) (*Record, error)

	// Lock marks the identifier locked for the given duration and returns
	// the lock deadline.
	Lock(ctx context.Context, identifier string, now time.Time, duration time.Duration) (time.Time, error)

	// Clear removes all failure state for the identifier.
	Clear(ctx context.Context, identifier string) error
}

// Config holds the lockout policy.
type Config struct {
	// Threshold is the number of failures inside the window that triggers
	// a lock.
	Threshold int
	// Window is the rolling period over which failures are counted.
	Window time.Duration
	// LockDuration is how long a triggered lock lasts.
	LockDuration time.Duration
}

// DefaultConfig mirrors the deployment defaults.
func DefaultConfig() Config {
	return Config{Threshold: 5, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}
}

// Status is the outcome of a lockout check.
type Status struct {
	// Allowed reports whether a login attempt may proceed.
	Allowed bool
	// FailureCount is the number of failures currently inside the window.
	FailureCount int
	// RetryAfter is how long the caller must wait when not allowed.
	RetryAfter time.Duration
}

// Service applies the lockout policy on top of a Store.
type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithConfig overrides the default lockout policy.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// New constructs the lockout service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	svc := &Service{
		store:  store,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check reports whether a login attempt for the identifier may proceed.
// The zero record path is taken for unknown identifiers so known and unknown
// names behave identically.
func (s *Service) Check(ctx context.Context, identifier string) (*Status, error) {
	now := requestcontext.Now(ctx)
	record, err := s.store.Get(ctx, identifier, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check login lockout")
	}
	if record == nil {
		record = &Record{Identifier: identifier}
	}
	if record.LockedAt(now) {
		s.logger.WarnContext(ctx, "login attempt while locked out",
			"identifier", identifier,
			"locked_until", record.LockedUntil,
		)
		return &Status{
			Allowed:      false,
			FailureCount: record.FailureCount,
			RetryAfter:   record.LockedUntil.Sub(now),
		}, nil
	}

	if record.FailureCount >= s.cfg.Threshold {
		return &Status{
			Allowed:      false,
			FailureCount: record.FailureCount,
			RetryAfter:   s.cfg.LockDuration,
		}, nil
	}

	return &Status{Allowed: true, FailureCount: record.FailureCount}, nil
}

// RecordFailure counts a failed login and applies the lock when the
// threshold is reached.
func (s *Service) RecordFailure(ctx context.Context, identifier string) (*Record, error) {
	now := requestcontext.Now(ctx)
	record, err := s.store.RecordFailure(ctx, identifier, now, s.cfg.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record login failure")
	}

	if record.FailureCount >= s.cfg.Threshold && !record.LockedAt(now) {
		until, err := s.store.Lock(ctx, identifier, now, s.cfg.LockDuration)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not apply login lock")
		}
		record.LockedUntil = &until
		s.logger.WarnContext(ctx, "login lockout triggered",
			"identifier", identifier,
			"failures", record.FailureCount,
			"locked_until", until,
		)
	}
	return record, nil
}

// Clear removes all failure state for the identifier, typically after a
// successful login.
func (s *Service) Clear(ctx context.Context, identifier string) error {
	if err := s.store.Clear(ctx, identifier); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not clear login failures")
	}
	return nil
}
