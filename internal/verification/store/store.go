// Package store persists verification records. Implementations translate
// their backend's failure modes into pkg/platform/sentinel errors so the
// service can map them onto domain errors.
package store

import (
	"context"
	"time"

	"vouch/internal/verification/models"
)

// Store is the storage contract for verification records.
//
// Every method takes the caller's "now" explicitly: expiry is evaluated
// lazily by timestamp comparison and stores carry no clock of their own.
type Store interface {
	// Create persists a new record inside a single transaction. Within that
	// transaction it rejects an unexpired record for the same ordered pair
	// with sentinel.ErrConflict (closing the exists/create race), and links
	// an unexpired reverse record by setting Reciprocated on both sides.
	// The returned record carries the assigned ID and final Reciprocated
	// value.
	Create(ctx context.Context, record *models.Record, now time.Time) (*models.Record, error)

	// ExistsPair reports whether an unexpired record exists for the ordered
	// (source, dest) pair.
	ExistsPair(ctx context.Context, sourceUID, destUID string, now time.Time) (bool, error)

	// FindByID returns the record with the given id regardless of expiry,
	// or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id int64) (*models.Record, error)

	// FindBySource returns unexpired records initiated by uid.
	FindBySource(ctx context.Context, uid string, now time.Time) ([]models.Record, error)

	// FindByDestination returns unexpired records vouching for uid.
	FindByDestination(ctx context.Context, uid string, now time.Time) ([]models.Record, error)

	// FindAllFor returns every record where uid is source or destination,
	// regardless of expiry. Used for reporting and history.
	FindAllFor(ctx context.Context, uid string) ([]models.Record, error)
}
