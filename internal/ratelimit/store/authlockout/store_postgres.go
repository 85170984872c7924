package authlockout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// PostgresStore persists lockout records in PostgreSQL.
// This store is pure I/O: lock checks and thresholds belong in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, nationalID id.NationalID) (*models.Lockout, error) {
	query := `
		SELECT national_id, failure_count, locked_until, last_failure_at
		FROM face_login_lockouts
		WHERE national_id = $1
	`
	record, err := scanLockout(s.db.QueryRowContext(ctx, query, nationalID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lockout: %w", err)
	}
	return record, nil
}

// RecordFailure atomically increments the failure count, restarting it when the
// previous failure is older than windowStart. A single upsert keeps concurrent
// failures from being lost.
func (s *PostgresStore) RecordFailure(ctx context.Context, nationalID id.NationalID, now, windowStart time.Time) (*models.Lockout, error) {
	query := `
		INSERT INTO face_login_lockouts (national_id, failure_count, locked_until, last_failure_at)
		VALUES ($1, 1, NULL, $2)
		ON CONFLICT (national_id) DO UPDATE SET
			failure_count = CASE
				WHEN face_login_lockouts.last_failure_at < $3 THEN 1
				ELSE face_login_lockouts.failure_count + 1
			END,
			last_failure_at = $2
		RETURNING national_id, failure_count, locked_until, last_failure_at
	`
	record, err := scanLockout(s.db.QueryRowContext(ctx, query, nationalID.String(), now, windowStart))
	if err != nil {
		return nil, fmt.Errorf("record lockout failure: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Lock(ctx context.Context, nationalID id.NationalID, until time.Time) error {
	query := `
		INSERT INTO face_login_lockouts (national_id, failure_count, locked_until, last_failure_at)
		VALUES ($1, 0, $2, $2)
		ON CONFLICT (national_id) DO UPDATE SET
			locked_until = $2,
			failure_count = 0
	`
	if _, err := s.db.ExecContext(ctx, query, nationalID.String(), until); err != nil {
		return fmt.Errorf("apply lockout: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, nationalID id.NationalID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM face_login_lockouts WHERE national_id = $1`, nationalID.String())
	if err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

type lockoutRow interface {
	Scan(dest ...any) error
}

func scanLockout(row lockoutRow) (*models.Lockout, error) {
	var record models.Lockout
	var nationalID string
	var lockedUntil sql.NullTime
	if err := row.Scan(&nationalID, &record.FailureCount, &lockedUntil, &record.LastFailureAt); err != nil {
		return nil, err
	}
	record.NationalID = id.NationalID(nationalID)
	if lockedUntil.Valid {
		t := lockedUntil.Time
		record.LockedUntil = &t
	}
	return &record, nil
}
