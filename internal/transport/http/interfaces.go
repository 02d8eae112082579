package httptransport

import (
	"context"

	"vouch/internal/directory"
	"vouch/internal/lockout"
	"vouch/internal/login"
	"vouch/internal/verification/models"
)

// Verifications is the ledger surface the transport needs.
type Verifications interface {
	Create(ctx context.Context, sourceUID, destUID string) (*models.Record, error)
	FindByID(ctx context.Context, id int64) (*models.Record, error)
	FindBySource(ctx context.Context, uid string) ([]models.Record, error)
	FindByDestination(ctx context.Context, uid string) ([]models.Record, error)
	FindAllFor(ctx context.Context, uid string) ([]models.Record, error)
}

// Directory is the people directory surface the transport needs.
type Directory interface {
	Search(ctx context.Context, query string) []directory.Person
}

// Login is the authentication provider surface the transport needs.
type Login interface {
	Fields() []login.Field
	Authenticate(ctx context.Context, form map[string]string) login.Outcome
	ProductionReady() bool
}

// Lockout throttles repeated login failures.
type Lockout interface {
	Check(ctx context.Context, identifier string) (*lockout.Status, error)
	RecordFailure(ctx context.Context, identifier string) (*lockout.Record, error)
	Clear(ctx context.Context, identifier string) error
}

// Reporter emails suspicious verification reports.
type Reporter interface {
	Email(ctx context.Context, text, reporterUID string, verificationID int64) error
}
