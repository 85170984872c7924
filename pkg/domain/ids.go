package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// Typed identifiers keep national ids, voter ids and party ids from being
// swapped at call sites. Parse functions are the trust boundary: they trim,
// bound and character-check raw input.

const (
	maxNationalIDLength = 20
	minNationalIDLength = 4
	maxVoterIDLength    = 20
	minPhoneDigits      = 7
	maxPhoneDigits      = 15
)

// NationalID is the citizen identity number (e.g. a 12 digit Aadhaar).
type NationalID string

// VoterID is the official electoral roll identifier.
type VoterID string

// Phone is a contact number; not unique across identities.
type Phone string

// PartyID identifies a party on the ballot.
type PartyID uuid.UUID

// VoteID identifies a recorded vote.
type VoteID uuid.UUID

func (n NationalID) String() string { return string(n) }
func (v VoterID) String() string    { return string(v) }
func (p Phone) String() string      { return string(p) }
func (p PartyID) String() string    { return uuid.UUID(p).String() }
func (v VoteID) String() string     { return uuid.UUID(v).String() }

// IsNil reports whether the party id is the zero UUID.
func (p PartyID) IsNil() bool { return uuid.UUID(p) == uuid.Nil }

// MarshalText renders the canonical UUID form so JSON carries a string.
func (p PartyID) MarshalText() ([]byte, error) { return uuid.UUID(p).MarshalText() }

func (p *PartyID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(p).UnmarshalText(b)
}

func (v VoteID) MarshalText() ([]byte, error) { return uuid.UUID(v).MarshalText() }

func (v *VoteID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(v).UnmarshalText(b)
}

// Masked renders the national id with all but the last four characters hidden,
// for logs and audit events.
func (n NationalID) Masked() string {
	s := string(n)
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// ParseNationalID validates a national id: 4-20 ASCII letters or digits.
func ParseNationalID(raw string) (NationalID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national id is required")
	}
	if len(s) < minNationalIDLength || len(s) > maxNationalIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national id must be 4-20 characters")
	}
	if !isAlphanumeric(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national id must contain only letters and digits")
	}
	return NationalID(s), nil
}

// ParseVoterID validates a voter id: 1-20 ASCII letters or digits. Case is
// preserved; comparisons against the roll are exact.
func ParseVoterID(raw string) (VoterID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter id is required")
	}
	if len(s) > maxVoterIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter id must be at most 20 characters")
	}
	if !isAlphanumeric(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter id must contain only letters and digits")
	}
	return VoterID(s), nil
}

// ParsePhone validates a phone number: optional leading '+', then 7-15 digits.
func ParsePhone(raw string) (Phone, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "phone is required")
	}
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", dErrors.New(dErrors.CodeInvalidInput, "phone must have 7-15 digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "phone must contain only digits")
		}
	}
	return Phone(s), nil
}

// ParsePartyID parses a non-nil UUID party id.
func ParsePartyID(raw string) (PartyID, error) {
	u, err := parseUUID(raw, "party id")
	if err != nil {
		return PartyID{}, err
	}
	return PartyID(u), nil
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

func isAlphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
