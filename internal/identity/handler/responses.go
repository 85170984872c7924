package handler

import (
	"time"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

type registeredUser struct {
	Name    string        `json:"name"`
	Aadhaar id.NationalID `json:"aadhaar"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type loginUser struct {
	Name    string        `json:"name"`
	Aadhaar id.NationalID `json:"aadhaar"`
	VoterID *id.VoterID   `json:"voterID"`
}

type loginResponse struct {
	Success   bool       `json:"success"`
	User      loginUser  `json:"user"`
	Distance  float64    `json:"distance"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type linkedUser struct {
	Aadhaar id.NationalID `json:"aadhaar"`
	VoterID id.VoterID    `json:"voterID"`
}

type linkResponse struct {
	Message string     `json:"message"`
	User    linkedUser `json:"user"`
}
