package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/metrics"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// AuthenticateCommand carries validated login input.
type AuthenticateCommand struct {
	NationalID id.NationalID
	Phone      id.Phone
	Image      biometric.DecodedImage
}

// AuthResult is a successful face login. Identity is the matched identity,
// which can differ from the claimed one when the fallback scan found a closer
// enrolment.
type AuthResult struct {
	Identity       *models.Identity
	Distance       float64
	FastPath       bool
	Token          string
	TokenExpiresAt time.Time
}

// Authenticate verifies a live capture against the claimed identity first and
// falls back to a scan over every enrolment.
func (s *Service) Authenticate(ctx context.Context, cmd AuthenticateCommand) (result *AuthResult, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "identity.Authenticate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveAuthenticate(start)
	}()

	claimed, err := s.identities.FindByNationalIDAndPhone(ctx, cmd.NationalID, cmd.Phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveLogin(metrics.OutcomeUnknownUser, 0, false)
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	if s.lockout != nil {
		if err := s.lockout.Check(ctx, cmd.NationalID); err != nil {
			if dErrors.HasCode(err, dErrors.CodeTooManyRequests) {
				s.metrics.ObserveLogin(metrics.OutcomeLocked, 0, false)
			}
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	s.archiveCapture(ctx, biometric.CaptureLogin, cmd.NationalID, cmd.Image, now)

	incoming, err := biometric.FirstDescriptor(ctx, s.extractor, cmd.Image.Data, s.matcher.Length())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBiometricQuality) {
			s.metrics.ObserveLogin(metrics.OutcomeNoFace, 0, false)
		}
		return nil, err
	}

	match, err := s.matcher.MatchClaimed(ctx, incoming, claimed.Candidate(), s.identities)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrolled descriptors")
	}
	span.SetAttributes(
		attribute.Bool("match.fast_path", match.FastPath),
		attribute.Bool("match.matched", match.Matched),
		attribute.Int("match.considered", match.Considered),
	)

	if !match.Matched {
		s.metrics.ObserveLogin(metrics.OutcomeNotMatched, match.Distance, false)
		s.recordFailure(ctx, cmd.NationalID)
		s.emit(ctx, audit.ActionFaceLoginFailed, cmd.NationalID, fmt.Sprintf("best distance %.4f", match.Distance))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "face not recognized")
	}

	matched := claimed
	if match.Candidate.NationalID != claimed.NationalID {
		matched, err = s.identities.FindByNationalID(ctx, match.Candidate.NationalID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load matched identity")
		}
		s.logger.WarnContext(ctx, "face matched a different identity than claimed",
			"claimed", cmd.NationalID.Masked(),
			"matched", matched.NationalID.Masked(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, cmd.NationalID); err != nil {
			s.logger.WarnContext(ctx, "failed to clear face login failures", "error", err)
		}
	}

	result = &AuthResult{Identity: matched, Distance: match.Distance, FastPath: match.FastPath}
	if s.tokens != nil {
		token, expiresAt, err := s.tokens.IssueSessionToken(matched.NationalID, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
		}
		result.Token = token
		result.TokenExpiresAt = expiresAt
	}

	s.metrics.ObserveLogin(metrics.OutcomeMatched, match.Distance, match.FastPath)
	span.AddEvent("matched", trace.WithAttributes(attribute.Float64("match.distance", match.Distance)))
	s.logger.InfoContext(ctx, "face login succeeded",
		"national_id", matched.NationalID.Masked(),
		"fast_path", match.FastPath,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.ActionFaceLoginSucceeded, matched.NationalID, fmt.Sprintf("distance %.4f", match.Distance))
	return result, nil
}

func (s *Service) recordFailure(ctx context.Context, nationalID id.NationalID) {
	if s.lockout == nil {
		return
	}
	if _, err := s.lockout.RecordFailure(ctx, nationalID); err != nil {
		s.logger.ErrorContext(ctx, "failed to record face login failure",
			"national_id", nationalID.Masked(),
			"error", err,
		)
	}
}
