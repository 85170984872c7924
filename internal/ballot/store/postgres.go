package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/postgres"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

const defaultVoteTxTimeout = 5 * time.Second

// PostgresStore is the ballot ledger in PostgreSQL. The unique index on
// votes.voter_id serializes concurrent votes by the same voter; the tally
// moves with an in-place increment inside the same transaction.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultVoteTxTimeout}
}

// RecordVote inserts the vote and increments the party in one transaction.
func (s *PostgresStore) RecordVote(ctx context.Context, vote models.Vote) (*models.Party, error) {
	var party *models.Party
	err := s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var inserted uuid.UUID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO votes (id, voter_id, party_id, cast_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (voter_id) DO NOTHING
			RETURNING id
		`, uuid.UUID(vote.ID), vote.VoterID.String(), uuid.UUID(vote.PartyID), vote.CastAt).Scan(&inserted)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return sentinel.ErrAlreadyUsed
			case postgres.IsForeignKeyViolation(err):
				return sentinel.ErrNotFound
			case postgres.IsUniqueViolation(err, postgres.ConstraintVotesVoter):
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert vote: %w", err)
		}

		party, err = scanParty(tx.QueryRowContext(ctx, `
			UPDATE parties SET vote_count = vote_count + 1
			WHERE id = $1
			RETURNING id, name, candidate, logo, vote_count, created_at
		`, uuid.UUID(vote.PartyID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("increment party: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (s *PostgresStore) HasVoted(ctx context.Context, voterID id.VoterID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM votes WHERE voter_id = $1)`, voterID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListParties(ctx context.Context) ([]models.Party, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, candidate, logo, vote_count, created_at
		FROM parties
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var out []models.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		out = append(out, *party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListVotes(ctx context.Context) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voter_id, party_id, cast_at
		FROM votes
		ORDER BY cast_at, voter_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var out []models.Vote
	for rows.Next() {
		var (
			vote    models.Vote
			voteID  uuid.UUID
			partyID uuid.UUID
			voterID string
		)
		if err := rows.Scan(&voteID, &voterID, &partyID, &vote.CastAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		vote.ID = id.VoteID(voteID)
		vote.VoterID = id.VoterID(voterID)
		vote.PartyID = id.PartyID(partyID)
		out = append(out, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return out, nil
}

// Seed inserts parties whose name is not on the ballot yet.
func (s *PostgresStore) Seed(ctx context.Context, parties []models.Party) (int, error) {
	added := 0
	err := s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		base := time.Now()
		for i, p := range parties {
			partyID := uuid.UUID(p.ID)
			if partyID == uuid.Nil {
				partyID = uuid.New()
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO parties (id, name, candidate, logo, vote_count, created_at)
				VALUES ($1, $2, $3, $4, 0, $5)
				ON CONFLICT (name) DO NOTHING
			`, partyID, p.Name, p.Candidate, p.Logo, base.Add(time.Duration(i)*time.Microsecond))
			if err != nil {
				return fmt.Errorf("seed party %q: %w", p.Name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("seed party rows affected: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *PostgresStore) runInTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type partyRow interface {
	Scan(dest ...any) error
}

func scanParty(row partyRow) (*models.Party, error) {
	var party models.Party
	var partyID uuid.UUID
	if err := row.Scan(&partyID, &party.Name, &party.Candidate, &party.Logo, &party.VoteCount, &party.CreatedAt); err != nil {
		return nil, err
	}
	party.ID = id.PartyID(partyID)
	return &party, nil
}
