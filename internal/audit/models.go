package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names a recorded event.
type Action string

const (
	ActionIdentityRegistered Action = "identity_registered"
	ActionFaceLoginSucceeded Action = "face_login_succeeded"
	ActionFaceLoginFailed    Action = "face_login_failed"
	ActionFaceLoginLocked    Action = "face_login_locked"
	ActionVoterLinked        Action = "voter_linked"
	ActionVoteCast           Action = "vote_cast"
	ActionOTPIssued          Action = "otp_issued"
	ActionOTPVerified        Action = "otp_verified"
	ActionDataExported       Action = "data_exported"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Subject holds a masked
// national id; descriptors and images never enter the trail.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Device    string    `json:"device,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
