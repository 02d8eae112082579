// Package service implements the verification ledger: creating, querying and
// linking verification records between two identities.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vouch/internal/directory"
	"vouch/internal/secret"
	"vouch/internal/verification/metrics"
	"vouch/internal/verification/models"
	"vouch/internal/verification/store"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Store is an alias for the storage contract consumed by the ledger.
type Store = store.Store

// Domain errors returned by ledger operations.
var (
	// ErrUnknownIdentity is returned when a uid does not resolve in the
	// directory. The UI only offers valid destinations, so this is treated
	// as a tampering signal and logged as an error.
	ErrUnknownIdentity = dErrors.New(dErrors.CodeInvalidInput, "unknown identity")

	// ErrSelfVerification rejects source == destination. The web layer also
	// prevents this; the ledger enforces it directly for robustness against
	// direct API misuse.
	ErrSelfVerification = dErrors.New(dErrors.CodeInvalidInput, "cannot create a verification for yourself")

	// ErrActiveExists rejects a second unexpired record for the same
	// ordered pair. Enforced atomically inside the creation transaction.
	ErrActiveExists = dErrors.New(dErrors.CodeConflict, "an active verification for this pair already exists")
)

// Config controls secret generation and record lifetime. Values are fixed
// per deployment.
type Config struct {
	// Timeout is how long a record stays active after creation.
	Timeout time.Duration
	// SecretLength is the target shared secret length.
	SecretLength int
	// VariableLength randomizes the realized secret length per creation.
	VariableLength bool
}

// DefaultConfig mirrors the deployment defaults.
func DefaultConfig() Config {
	return Config{Timeout: 300 * time.Second, SecretLength: 8, VariableLength: true}
}

// Service is the verification ledger. It is request-scoped and stateless
// between operations: every method is a self-contained transaction against
// the store.
type Service struct {
	store   Store
	people  directory.Provider
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the ledger metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithConfig overrides the default ledger configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// New constructs the ledger.
func New(store Store, people directory.Provider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("verification store is required")
	}
	if people == nil {
		return nil, errors.New("directory provider is required")
	}
	svc := &Service{
		store:  store,
		people: people,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create resolves both identities, generates the shared secret and expiry,
// persists the record and links an unexpired reverse record (setting
// Reciprocated on both sides). The returned record is expanded for display.
//
// Nothing is persisted when either identity fails to resolve.
func (s *Service) Create(ctx context.Context, sourceUID, destUID string) (*models.Record, error) {
	start := time.Now()
	if sourceUID == destUID {
		return nil, ErrSelfVerification
	}

	src := s.people.Lookup(ctx, sourceUID)
	if src == nil {
		s.logger.ErrorContext(ctx, "verification source not found in directory", "source", sourceUID)
		s.metrics.RecordFailure("unknown_source")
		return nil, ErrUnknownIdentity
	}
	dst := s.people.Lookup(ctx, destUID)
	if dst == nil {
		s.logger.ErrorContext(ctx, "verification destination not found in directory", "destination", destUID)
		s.metrics.RecordFailure("unknown_destination")
		return nil, ErrUnknownIdentity
	}

	now := requestcontext.Now(ctx)
	expiresIn := models.ApproxDuration(s.cfg.Timeout)
	sharedSecret, err := secret.Generate(sourceUID+expiresIn+destUID, s.cfg.SecretLength, s.cfg.VariableLength)
	if err != nil {
		s.metrics.RecordFailure("secret_generation")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate shared secret")
	}

	record := &models.Record{
		SourceUID:    sourceUID,
		SourceName:   src.Name(),
		DestUID:      destUID,
		DestName:     dst.Name(),
		SharedSecret: sharedSecret,
		Expiry:       now.Add(s.cfg.Timeout),
	}

	created, err := s.store.Create(ctx, record, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			s.metrics.RecordFailure("active_pair_exists")
			return nil, ErrActiveExists
		case errors.Is(err, sentinel.ErrInconsistent):
			s.metrics.RecordFailure("inconsistency")
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verification storage is inconsistent")
		default:
			s.metrics.RecordFailure("storage")
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create verification")
		}
	}

	s.metrics.RecordCreated(created.Reciprocated)
	s.metrics.ObserveDuration("create", time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "verification created",
		"source", created.SourceUID,
		"destination", created.DestUID,
		"expiry", created.Expiry,
		"reciprocated", created.Reciprocated,
	)
	return created.Expand(now), nil
}

// Exists reports whether an unexpired record exists for the ordered pair.
// Callers may use it to pre-check before Create; Create enforces the
// invariant regardless.
func (s *Service) Exists(ctx context.Context, sourceUID, destUID string) (bool, error) {
	exists, err := s.store.ExistsPair(ctx, sourceUID, destUID, requestcontext.Now(ctx))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not check verification existence")
	}
	return exists, nil
}

// FindByID returns the record with the given id in any expiry state,
// expanded for display.
func (s *Service) FindByID(ctx context.Context, id int64) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load verification")
	}
	return record.Expand(requestcontext.Now(ctx)), nil
}

// FindBySource returns the unexpired records initiated by uid, expanded for
// display.
func (s *Service) FindBySource(ctx context.Context, uid string) ([]models.Record, error) {
	now := requestcontext.Now(ctx)
	records, err := s.store.FindBySource(ctx, uid, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load verifications")
	}
	return expandAll(records, now), nil
}

// FindByDestination returns the unexpired records vouching for uid, expanded
// for display.
func (s *Service) FindByDestination(ctx context.Context, uid string) ([]models.Record, error) {
	now := requestcontext.Now(ctx)
	records, err := s.store.FindByDestination(ctx, uid, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load verifications")
	}
	return expandAll(records, now), nil
}

// FindAllFor returns every record involving uid regardless of expiry, for
// reporting and history.
func (s *Service) FindAllFor(ctx context.Context, uid string) ([]models.Record, error) {
	now := requestcontext.Now(ctx)
	records, err := s.store.FindAllFor(ctx, uid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load verification history")
	}
	return expandAll(records, now), nil
}

func expandAll(records []models.Record, now time.Time) []models.Record {
	for i := range records {
		records[i].Expand(now)
	}
	return records
}
