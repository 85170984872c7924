package models

import (
	"time"
)

// EndpointClass groups routes that share a request budget.
type EndpointClass string

const (
	// ClassBiometric covers routes that run descriptor extraction.
	ClassBiometric EndpointClass = "biometric"
	// ClassOTP covers the demo OTP routes.
	ClassOTP EndpointClass = "otp"
	// ClassDefault covers every other API route.
	ClassDefault EndpointClass = "default"
)

// Policy is a sliding window budget.
type Policy struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewIPKey scopes a bucket to one client address and class.
func NewIPKey(ip string, class EndpointClass) string {
	return "ip:" + string(class) + ":" + ip
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}
