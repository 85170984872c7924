package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append is idempotent on event id.
func (s *PostgresStore) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, action, subject, request_id, client_ip, device, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Action),
		event.Subject,
		event.RequestID,
		event.ClientIP,
		event.Device,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.list(ctx, `
		SELECT id, occurred_at, action, subject, request_id, client_ip, device, detail
		FROM audit_events
		WHERE subject = $1
		ORDER BY occurred_at, id
	`, subject)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]audit.Event, error) {
	return s.list(ctx, `
		SELECT id, occurred_at, action, subject, request_id, client_ip, device, detail
		FROM audit_events
		ORDER BY occurred_at, id
	`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &e.Subject, &e.RequestID, &e.ClientIP, &e.Device, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
