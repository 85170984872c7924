// Package matcher decides whether a live face descriptor belongs to an enrolled
// identity. It is a nearest-neighbour search under a distance tolerance: the
// closest enrolled descriptor wins only when it is within tolerance.
//
// Ties on exactly equal distances resolve to the first candidate encountered,
// so the order of the candidate source makes results deterministic. Stores
// return candidates ordered by enrolment time, then national id.
package matcher

import (
	"context"
	"fmt"
	"math"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// Candidate is an enrolled identity's descriptor.
type Candidate struct {
	NationalID id.NationalID
	Descriptor biometric.Descriptor
}

// CandidateSource yields every enrolled candidate in a stable order.
// An indexed nearest-neighbour structure can satisfy it without changing Match.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}

// Result is the outcome of a match attempt. Matched is false when no candidate
// was within tolerance; Distance then holds the best distance seen, or +Inf
// when nothing was comparable.
type Result struct {
	Matched    bool
	Candidate  Candidate
	Distance   float64
	Considered int
	FastPath   bool
}

// Matcher applies the matching policy for one descriptor length and tolerance.
type Matcher struct {
	tolerance float64
	length    int
}

// New returns a Matcher. Descriptors of any other length are not comparable.
func New(tolerance float64, length int) (*Matcher, error) {
	if tolerance <= 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return nil, fmt.Errorf("tolerance must be a positive finite number, got %v", tolerance)
	}
	if length <= 0 {
		return nil, fmt.Errorf("descriptor length must be positive, got %d", length)
	}
	return &Matcher{tolerance: tolerance, length: length}, nil
}

func (m *Matcher) Tolerance() float64 { return m.tolerance }

func (m *Matcher) Length() int { return m.length }

// Match scans candidates for the nearest comparable descriptor.
func (m *Matcher) Match(incoming biometric.Descriptor, candidates []Candidate) Result {
	return Match(incoming, candidates, m.tolerance, m.length)
}

// MatchClaimed compares the claimed identity first and returns on success.
// Otherwise it runs the full scan over source, exactly as Match would.
func (m *Matcher) MatchClaimed(ctx context.Context, incoming biometric.Descriptor, claimed Candidate, source CandidateSource) (Result, error) {
	if !incoming.Comparable(m.length) {
		return Result{Distance: math.Inf(1)}, nil
	}
	if claimed.Descriptor.Comparable(m.length) {
		if d := Distance(incoming, claimed.Descriptor); d <= m.tolerance {
			return Result{Matched: true, Candidate: claimed, Distance: d, Considered: 1, FastPath: true}, nil
		}
	}

	candidates, err := source.Candidates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load match candidates: %w", err)
	}
	return m.Match(incoming, candidates), nil
}

// Match is the stateless form of Matcher.Match.
func Match(incoming biometric.Descriptor, candidates []Candidate, tolerance float64, length int) Result {
	best := Result{Distance: math.Inf(1)}
	if !incoming.Comparable(length) {
		return best
	}
	found := false
	for _, c := range candidates {
		if !c.Descriptor.Comparable(length) {
			continue
		}
		best.Considered++
		d := Distance(incoming, c.Descriptor)
		if d < best.Distance {
			best.Distance = d
			best.Candidate = c
			found = true
		}
	}
	if found && best.Distance <= tolerance {
		best.Matched = true
	}
	if !best.Matched {
		best.Candidate = Candidate{}
	}
	return best
}

// Distance is the Euclidean distance. Callers must pass equal-length vectors.
func Distance(a, b biometric.Descriptor) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// SliceSource serves a fixed candidate slice.
type SliceSource []Candidate

func (s SliceSource) Candidates(context.Context) ([]Candidate, error) {
	return s, nil
}
