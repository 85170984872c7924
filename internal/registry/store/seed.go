package store

import (
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
)

// DefaultVoters is the demo electoral roll loaded into empty stores.
func DefaultVoters() []models.Voter {
	return []models.Voter{
		{VoterID: "ABC123456", Name: "Amit Kumar", DateOfBirth: "1990-05-15", Constituency: "North Delhi"},
		{VoterID: "XYZ789012", Name: "Priya Sharma", DateOfBirth: "1992-08-22", Constituency: "South Mumbai"},
		{VoterID: "DEF456789", Name: "Rajesh Patel", DateOfBirth: "1988-12-10", Constituency: "Gujarat East"},
		{VoterID: "GHI111222", Name: "Sunita Verma", DateOfBirth: "1985-07-03", Constituency: "Bengaluru North"},
		{VoterID: "JKL333444", Name: "Ramesh Rao", DateOfBirth: "1979-11-21", Constituency: "Hyderabad Central"},
	}
}
