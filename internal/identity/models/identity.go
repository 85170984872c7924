package models

import (
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// Identity is an enrolled citizen. NationalID is immutable once created; the
// descriptor is the face sample taken at registration and never leaves the
// service in responses.
type Identity struct {
	NationalID    id.NationalID        `json:"aadhaar"`
	Name          string               `json:"name"`
	Phone         id.Phone             `json:"phone"`
	Descriptor    biometric.Descriptor `json:"-"`
	LinkedVoterID id.VoterID           `json:"voterID,omitempty"`
	Constituency  string               `json:"constituency,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// IsLinked reports whether a voter record has been attached.
func (i *Identity) IsLinked() bool {
	return i.LinkedVoterID != ""
}

// Candidate exposes the enrolled descriptor to the matcher.
func (i *Identity) Candidate() matcher.Candidate {
	return matcher.Candidate{NationalID: i.NationalID, Descriptor: i.Descriptor}
}

// Clone returns a copy that shares no descriptor memory with i.
func (i *Identity) Clone() *Identity {
	out := *i
	out.Descriptor = i.Descriptor.Clone()
	return &out
}
