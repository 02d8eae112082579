package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vouch/internal/verification/models"
	"vouch/pkg/platform/sentinel"
)

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `auth_id, source_uid, source_name, dest_uid, dest_name, shared_secret, expiry, reciprocated`

// Create inserts the record and links any unexpired reverse record within a
// single transaction, so the at-most-one-active-pair invariant holds under
// concurrent callers.
func (s *PostgresStore) Create(ctx context.Context, record *models.Record, now time.Time) (*models.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create verification: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Serialize creates for the pair in either direction. Read committed
	// alone would let two transactions both pass the duplicate check, or
	// both miss each other's reverse record.
	if _, err := tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtext(least($1, $2) || ':' || greatest($1, $2)))
	`, record.SourceUID, record.DestUID); err != nil {
		return nil, fmt.Errorf("lock verification pair: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM authentications
		WHERE source_uid = $1 AND dest_uid = $2 AND expiry > $3
	`, record.SourceUID, record.DestUID, now).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check active pair: %w", err)
	}
	if existing > 0 {
		return nil, sentinel.ErrConflict
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT auth_id FROM authentications
		WHERE source_uid = $1 AND dest_uid = $2 AND expiry > $3
		FOR UPDATE
	`, record.DestUID, record.SourceUID, now)
	if err != nil {
		return nil, fmt.Errorf("find reverse record: %w", err)
	}
	reverseIDs, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("find reverse record: %w", err)
	}
	if len(reverseIDs) > 1 {
		return nil, sentinel.ErrInconsistent
	}

	created := *record
	if len(reverseIDs) == 1 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE authentications SET reciprocated = TRUE WHERE auth_id = $1
		`, reverseIDs[0]); err != nil {
			return nil, fmt.Errorf("reciprocate reverse record: %w", err)
		}
		created.Reciprocated = true
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO authentications (source_uid, source_name, dest_uid, dest_name, shared_secret, expiry, reciprocated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING auth_id
	`,
		created.SourceUID,
		created.SourceName,
		created.DestUID,
		created.DestName,
		created.SharedSecret,
		created.Expiry,
		created.Reciprocated,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert verification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create verification: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ExistsPair(ctx context.Context, sourceUID, destUID string, now time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM authentications
		WHERE source_uid = $1 AND dest_uid = $2 AND expiry > $3
	`, sourceUID, destUID, now).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check pair exists: %w", err)
	}
	return count > 0, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Record, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM authentications WHERE auth_id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification by id: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) FindBySource(ctx context.Context, uid string, now time.Time) ([]models.Record, error) {
	records, err := s.query(ctx, `
		SELECT `+recordColumns+` FROM authentications
		WHERE source_uid = $1 AND expiry > $2
		ORDER BY auth_id
	`, uid, now)
	if err != nil {
		return nil, fmt.Errorf("find verifications by source: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindByDestination(ctx context.Context, uid string, now time.Time) ([]models.Record, error) {
	records, err := s.query(ctx, `
		SELECT `+recordColumns+` FROM authentications
		WHERE dest_uid = $1 AND expiry > $2
		ORDER BY auth_id
	`, uid, now)
	if err != nil {
		return nil, fmt.Errorf("find verifications by destination: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindAllFor(ctx context.Context, uid string) ([]models.Record, error) {
	records, err := s.query(ctx, `
		SELECT `+recordColumns+` FROM authentications
		WHERE source_uid = $1 OR dest_uid = $1
		ORDER BY auth_id
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("find verifications for uid: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(
			&r.ID, &r.SourceUID, &r.SourceName, &r.DestUID, &r.DestName,
			&r.SharedSecret, &r.Expiry, &r.Reciprocated,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var r models.Record
	err := row.Scan(
		&r.ID, &r.SourceUID, &r.SourceName, &r.DestUID, &r.DestName,
		&r.SharedSecret, &r.Expiry, &r.Reciprocated,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
