package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrAlreadyUsed: a unique key (national id, linked voter id, voter ballot) is taken
//   - ErrExpired: a time-bounded entry (OTP) has lapsed
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
