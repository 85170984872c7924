package store

import (
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
)

// DefaultParties is the demo ballot loaded into an empty ledger. IDs are
// assigned when seeded.
func DefaultParties() []models.Party {
	return []models.Party{
		{Name: "Bharatiya Janata Party", Candidate: "Narendra Damodar Das Modi", Logo: "🏛️"},
		{Name: "Indian National Congress", Candidate: "Rahul Gandhi", Logo: "🌳"},
		{Name: "Aam Aadmi Party", Candidate: "Arvind Kejriwal", Logo: "🧹"},
		{Name: "Trinamool Congress", Candidate: "Mamata Banerjee", Logo: "🌺"},
	}
}
