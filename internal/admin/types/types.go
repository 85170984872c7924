// Package types holds the admin view of records owned by other modules.
package types

import "time"

// ExportedIdentity is an enrolled identity without its face descriptor.
type ExportedIdentity struct {
	Aadhaar      string    `json:"aadhaar"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	VoterID      string    `json:"voterID,omitempty"`
	Constituency string    `json:"constituency,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
