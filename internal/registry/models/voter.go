package models

import (
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// Voter is an authoritative electoral roll entry. It is reference data and
// never changes once seeded.
type Voter struct {
	VoterID      id.VoterID `json:"voterID"`
	Name         string     `json:"name"`
	DateOfBirth  string     `json:"dob"`
	Constituency string     `json:"constituency"`
}

// DateOfBirthMatches compares the supplied date exactly, as stored (YYYY-MM-DD).
func (v *Voter) DateOfBirthMatches(dob string) bool {
	return v.DateOfBirth == dob
}
