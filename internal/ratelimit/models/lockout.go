package models

import (
	"time"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// Lockout tracks failed face logins for one national id.
type Lockout struct {
	NationalID    id.NationalID `json:"national_id"`
	FailureCount  int           `json:"failure_count"` // failures in the current window
	LockedUntil   *time.Time    `json:"locked_until,omitempty"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}

// IsLockedAt reports whether the lock is still in force at now.
func (l *Lockout) IsLockedAt(now time.Time) bool {
	return l != nil && l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// ShouldLock reports whether the failure count reached the threshold and no
// lock is active.
func (l *Lockout) ShouldLock(threshold int, now time.Time) bool {
	return l.FailureCount >= threshold && !l.IsLockedAt(now)
}

// RetryAfter is the remaining lock time, zero when unlocked.
func (l *Lockout) RetryAfter(now time.Time) time.Duration {
	if !l.IsLockedAt(now) {
		return 0
	}
	return l.LockedUntil.Sub(now)
}
