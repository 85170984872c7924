package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

// PostgresStore reads the voter roll from the voters table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByVoterID(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT voter_id, name, date_of_birth, constituency
		FROM voters
		WHERE voter_id = $1
	`, voterID.String()).Scan(&v.VoterID, &v.Name, &v.DateOfBirth, &v.Constituency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find voter: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Voter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_id, name, date_of_birth, constituency
		FROM voters
		ORDER BY voter_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	defer rows.Close()

	var out []models.Voter
	for rows.Next() {
		var v models.Voter
		if err := rows.Scan(&v.VoterID, &v.Name, &v.DateOfBirth, &v.Constituency); err != nil {
			return nil, fmt.Errorf("scan voter: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voters: %w", err)
	}
	return out, nil
}

// Seed inserts voters that are not present yet in one transaction.
func (s *PostgresStore) Seed(ctx context.Context, voters []models.Voter) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed voters: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	added := 0
	for _, v := range voters {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO voters (voter_id, name, date_of_birth, constituency)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (voter_id) DO NOTHING
		`, v.VoterID.String(), v.Name, v.DateOfBirth, v.Constituency)
		if err != nil {
			return 0, fmt.Errorf("seed voter %s: %w", v.VoterID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("seed voter rows affected: %w", err)
		}
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed voters: %w", err)
	}
	return added, nil
}
