package models

import (
	"time"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// Party is a ballot option. VoteCount only ever grows, by one per recorded vote.
type Party struct {
	ID        id.PartyID `json:"id"`
	Name      string     `json:"name"`
	Candidate string     `json:"candidate"`
	Logo      string     `json:"logo"`
	VoteCount int64      `json:"voteCount"`
	CreatedAt time.Time  `json:"-"`
}

// Vote is the single ballot a voter id may cast.
type Vote struct {
	ID      id.VoteID  `json:"id"`
	VoterID id.VoterID `json:"voterID"`
	PartyID id.PartyID `json:"party_id"`
	CastAt  time.Time  `json:"timestamp"`
}
