package service

import (
	"context"
	"errors"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// LinkCommand carries validated linking input.
type LinkCommand struct {
	NationalID  id.NationalID
	Phone       id.Phone
	VoterID     id.VoterID
	DateOfBirth string
}

// Link attaches a voter record to an identity. Checks run in order and the
// first failure wins: identity, voter record, date of birth, then uniqueness
// of the voter id, which the store enforces atomically.
func (s *Service) Link(ctx context.Context, cmd LinkCommand) (*models.Identity, error) {
	if _, err := s.identities.FindByNationalIDAndPhone(ctx, cmd.NationalID, cmd.Phone); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	voter, err := s.voters.FindByVoterID(ctx, cmd.VoterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "voterID not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up voter")
	}

	if !voter.DateOfBirthMatches(cmd.DateOfBirth) {
		return nil, dErrors.New(dErrors.CodeValidation, "DOB does not match")
	}

	linked, err := s.identities.LinkVoter(ctx, cmd.NationalID, cmd.VoterID, voter.Constituency)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "voterID already linked to another account")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link voter")
	}

	s.metrics.IncrementLinked()
	s.logger.InfoContext(ctx, "voter linked",
		"national_id", cmd.NationalID.Masked(),
		"voter_id", cmd.VoterID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.ActionVoterLinked, cmd.NationalID, cmd.VoterID.String())
	return linked, nil
}
