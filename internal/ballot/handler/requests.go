package handler

import (
	"strings"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// VoteRequest is the body of POST /api/vote.
type VoteRequest struct {
	Aadhaar string `json:"aadhaar"`
	VoterID string `json:"voterID"`
	PartyID string `json:"party_id"`

	parsedNationalID id.NationalID
	parsedVoterID    id.VoterID
	parsedPartyID    id.PartyID
}

// Validate implements httputil.Validatable.
func (r *VoteRequest) Validate() error {
	if strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.VoterID) == "" || strings.TrimSpace(r.PartyID) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing fields")
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	if r.parsedVoterID, err = id.ParseVoterID(r.VoterID); err != nil {
		return err
	}
	if r.parsedPartyID, err = id.ParsePartyID(r.PartyID); err != nil {
		return err
	}
	return nil
}

func (r *VoteRequest) ParsedNationalID() id.NationalID { return r.parsedNationalID }

func (r *VoteRequest) ParsedVoterID() id.VoterID { return r.parsedVoterID }

func (r *VoteRequest) ParsedPartyID() id.PartyID { return r.parsedPartyID }
