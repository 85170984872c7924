package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/postgres"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

// PostgresStore persists identities in PostgreSQL. Uniqueness of national id
// and linked voter id is enforced by constraints, not by prior reads.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const identityColumns = `national_id, name, phone, descriptor, linked_voter_id, constituency, created_at`

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (national_id, name, phone, descriptor, linked_voter_id, constituency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (national_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		identity.NationalID.String(),
		identity.Name,
		string(identity.Phone),
		pq.Float64Array(identity.Descriptor),
		nullVoterID(identity.LinkedVoterID),
		identity.Constituency,
		identity.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, postgres.ConstraintIdentityLinkedVoter) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create identity: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create identity rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE national_id = $1`
	return s.findOne(ctx, query, nationalID.String())
}

func (s *PostgresStore) FindByNationalIDAndPhone(ctx context.Context, nationalID id.NationalID, phone id.Phone) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE national_id = $1 AND phone = $2`
	return s.findOne(ctx, query, nationalID.String(), string(phone))
}

// LinkVoter updates the link in one statement. The unique index on
// linked_voter_id rejects a voter id already held by another identity.
func (s *PostgresStore) LinkVoter(ctx context.Context, nationalID id.NationalID, voterID id.VoterID, constituency string) (*models.Identity, error) {
	query := `
		UPDATE identities
		SET linked_voter_id = $2, constituency = $3, updated_at = NOW()
		WHERE national_id = $1
		RETURNING ` + identityColumns
	identity, err := scanIdentity(s.db.QueryRowContext(ctx, query, nationalID.String(), voterID.String(), constituency))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		if postgres.IsUniqueViolation(err, postgres.ConstraintIdentityLinkedVoter) {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("link voter: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) Candidates(ctx context.Context) ([]matcher.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT national_id, descriptor
		FROM identities
		ORDER BY created_at, national_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []matcher.Candidate
	for rows.Next() {
		var nationalID string
		var descriptor pq.Float64Array
		if err := rows.Scan(&nationalID, &descriptor); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, matcher.Candidate{
			NationalID: id.NationalID(nationalID),
			Descriptor: biometric.Descriptor(descriptor),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY created_at, national_id`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Identity, error) {
	identity, err := scanIdentity(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return identity, nil
}

type identityRow interface {
	Scan(dest ...any) error
}

func scanIdentity(row identityRow) (*models.Identity, error) {
	var (
		identity     models.Identity
		nationalID   string
		phone        string
		descriptor   pq.Float64Array
		linkedVoter  sql.NullString
		constituency sql.NullString
	)
	if err := row.Scan(&nationalID, &identity.Name, &phone, &descriptor, &linkedVoter, &constituency, &identity.CreatedAt); err != nil {
		return nil, err
	}
	identity.NationalID = id.NationalID(nationalID)
	identity.Phone = id.Phone(phone)
	identity.Descriptor = biometric.Descriptor(descriptor)
	if linkedVoter.Valid {
		identity.LinkedVoterID = id.VoterID(linkedVoter.String)
	}
	identity.Constituency = constituency.String
	return &identity, nil
}

func nullVoterID(v id.VoterID) sql.NullString {
	return sql.NullString{String: v.String(), Valid: v != ""}
}
