package service

import (
	"context"
	"errors"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// RegisterCommand carries validated enrolment input.
type RegisterCommand struct {
	Name       string
	NationalID id.NationalID
	Phone      id.Phone
	Image      biometric.DecodedImage
}

// Register enrols a new identity from its first detected face. A national id
// can be enrolled once; later attempts leave the first identity untouched.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*models.Identity, error) {
	// Cheap rejection before paying for extraction; CreateIfAbsent still decides.
	if _, err := s.identities.FindByNationalID(ctx, cmd.NationalID); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "aadhaar already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	now := requestcontext.Now(ctx)
	s.archiveCapture(ctx, biometric.CaptureRegistration, cmd.NationalID, cmd.Image, now)

	descriptor, err := biometric.FirstDescriptor(ctx, s.extractor, cmd.Image.Data, s.matcher.Length())
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		NationalID: cmd.NationalID,
		Name:       cmd.Name,
		Phone:      cmd.Phone,
		Descriptor: descriptor,
		CreatedAt:  now,
	}
	if err := s.identities.CreateIfAbsent(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "aadhaar already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity")
	}

	s.metrics.IncrementRegistered()
	s.logger.InfoContext(ctx, "identity registered",
		"national_id", cmd.NationalID.Masked(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.ActionIdentityRegistered, cmd.NationalID, "")
	return identity, nil
}
