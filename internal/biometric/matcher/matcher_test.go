package matcher

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

const (
	testLength    = 128
	testTolerance = 0.48
)

type MatcherSuite struct {
	suite.Suite
	rng     *rand.Rand
	matcher *Matcher
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) SetupTest() {
	s.rng = rand.New(rand.NewSource(7))
	m, err := New(testTolerance, testLength)
	s.Require().NoError(err)
	s.matcher = m
}

func (s *MatcherSuite) randomDescriptor() biometric.Descriptor {
	d := make(biometric.Descriptor, testLength)
	for i := range d {
		d[i] = s.rng.Float64()*2 - 1
	}
	return d
}

// offset returns base shifted by dist along the first axis.
func offset(base biometric.Descriptor, dist float64) biometric.Descriptor {
	d := base.Clone()
	d[0] += dist
	return d
}

func (s *MatcherSuite) enrolled(n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			NationalID: id.NationalID(string(rune('A'+i)) + "0000000"),
			Descriptor: s.randomDescriptor(),
		}
	}
	return out
}

func (s *MatcherSuite) TestEveryEnrolledDescriptorMatchesItself() {
	candidates := s.enrolled(25)
	for _, a := range candidates {
		res := s.matcher.Match(a.Descriptor, candidates)
		s.Require().True(res.Matched)
		s.Equal(a.NationalID, res.Candidate.NationalID)
		s.Zero(res.Distance)
		s.Equal(len(candidates), res.Considered)
	}
}

func (s *MatcherSuite) TestNearestBeyondToleranceIsNoMatch() {
	base := s.randomDescriptor()
	candidates := []Candidate{
		{NationalID: "NEAR0001", Descriptor: offset(base, 0.5)},
		{NationalID: "FAR00001", Descriptor: offset(base, 3)},
	}

	res := s.matcher.Match(base, candidates)
	s.False(res.Matched)
	s.Empty(res.Candidate.NationalID)
	s.InDelta(0.5, res.Distance, 1e-9)
}

func (s *MatcherSuite) TestDistanceEqualToToleranceMatches() {
	base := make(biometric.Descriptor, testLength)
	candidates := []Candidate{{NationalID: "EDGE0001", Descriptor: offset(base, 0.25)}}

	m, err := New(0.25, testLength)
	s.Require().NoError(err)
	res := m.Match(base, candidates)
	s.True(res.Matched)
	s.InDelta(0.25, res.Distance, 1e-12)
}

func (s *MatcherSuite) TestPicksClosestWithinTolerance() {
	base := s.randomDescriptor()
	candidates := []Candidate{
		{NationalID: "MID00001", Descriptor: offset(base, 0.3)},
		{NationalID: "BEST0001", Descriptor: offset(base, 0.1)},
		{NationalID: "EDGE0001", Descriptor: offset(base, 0.45)},
	}

	res := s.matcher.Match(base, candidates)
	s.Require().True(res.Matched)
	s.Equal(id.NationalID("BEST0001"), res.Candidate.NationalID)
	s.InDelta(0.1, res.Distance, 1e-9)
}

func (s *MatcherSuite) TestTieGoesToFirstEncountered() {
	base := make(biometric.Descriptor, testLength)
	candidates := []Candidate{
		{NationalID: "FIRST001", Descriptor: offset(base, 0.2)},
		{NationalID: "SECOND01", Descriptor: offset(base, -0.2)},
	}

	res := s.matcher.Match(base, candidates)
	s.Require().True(res.Matched)
	s.Equal(id.NationalID("FIRST001"), res.Candidate.NationalID)

	candidates[0], candidates[1] = candidates[1], candidates[0]
	res = s.matcher.Match(base, candidates)
	s.Equal(id.NationalID("SECOND01"), res.Candidate.NationalID)
}

func (s *MatcherSuite) TestIncomparableCandidatesAreSkipped() {
	base := s.randomDescriptor()
	candidates := []Candidate{
		{NationalID: "MISSING1", Descriptor: nil},
		{NationalID: "SHORT001", Descriptor: base[:64]},
		{NationalID: "LONG0001", Descriptor: append(base.Clone(), 0)},
		{NationalID: "REAL0001", Descriptor: offset(base, 0.4)},
	}

	res := s.matcher.Match(base, candidates)
	s.Require().True(res.Matched)
	s.Equal(id.NationalID("REAL0001"), res.Candidate.NationalID)
	s.Equal(1, res.Considered)
}

func (s *MatcherSuite) TestOnlyIncomparableCandidatesIsNoMatch() {
	base := s.randomDescriptor()
	res := s.matcher.Match(base, []Candidate{{NationalID: "SHORT001", Descriptor: base[:10]}})
	s.False(res.Matched)
	s.True(math.IsInf(res.Distance, 1))
	s.Zero(res.Considered)
}

func (s *MatcherSuite) TestIncomingOfWrongLengthNeverMatches() {
	candidates := s.enrolled(3)
	res := s.matcher.Match(candidates[0].Descriptor[:100], candidates)
	s.False(res.Matched)
}

func (s *MatcherSuite) TestMatchClaimedFastPath() {
	candidates := s.enrolled(5)
	claimed := candidates[2]
	source := &countingSource{candidates: candidates}

	res, err := s.matcher.MatchClaimed(context.Background(), offset(claimed.Descriptor, 0.1), claimed, source)
	s.Require().NoError(err)
	s.True(res.Matched)
	s.True(res.FastPath)
	s.Equal(claimed.NationalID, res.Candidate.NationalID)
	s.Zero(source.calls)
}

func (s *MatcherSuite) TestMatchClaimedFallsBackToFullScan() {
	candidates := s.enrolled(5)
	claimed := candidates[0]
	presented := offset(candidates[3].Descriptor, 0.05)
	source := &countingSource{candidates: candidates}

	res, err := s.matcher.MatchClaimed(context.Background(), presented, claimed, source)
	s.Require().NoError(err)
	s.Equal(1, source.calls)
	s.False(res.FastPath)
	s.Equal(s.matcher.Match(presented, candidates), res)
	s.Equal(candidates[3].NationalID, res.Candidate.NationalID)
}

func (s *MatcherSuite) TestMatchClaimedStaleClaimedDescriptor() {
	candidates := s.enrolled(3)
	claimed := Candidate{NationalID: candidates[1].NationalID, Descriptor: candidates[1].Descriptor[:5]}

	res, err := s.matcher.MatchClaimed(context.Background(), candidates[1].Descriptor, claimed, SliceSource(candidates))
	s.Require().NoError(err)
	s.True(res.Matched)
	s.False(res.FastPath)
	s.Equal(candidates[1].NationalID, res.Candidate.NationalID)
}

func (s *MatcherSuite) TestMatchClaimedNoMatchAnywhere() {
	candidates := s.enrolled(4)
	stranger := s.randomDescriptor()

	res, err := s.matcher.MatchClaimed(context.Background(), stranger, candidates[0], SliceSource(candidates))
	s.Require().NoError(err)
	s.False(res.Matched)
}

func (s *MatcherSuite) TestMatchClaimedSourceError() {
	candidates := s.enrolled(2)
	_, err := s.matcher.MatchClaimed(context.Background(), s.randomDescriptor(), candidates[0], failingSource{})
	s.Require().Error(err)
}

type countingSource struct {
	candidates []Candidate
	calls      int
}

func (c *countingSource) Candidates(context.Context) ([]Candidate, error) {
	c.calls++
	return c.candidates, nil
}

type failingSource struct{}

func (failingSource) Candidates(context.Context) ([]Candidate, error) {
	return nil, errors.New("store unavailable")
}

func TestNewRejectsBadParameters(t *testing.T) {
	_, err := New(0, 128)
	assert.Error(t, err)
	_, err = New(math.NaN(), 128)
	assert.Error(t, err)
	_, err = New(0.5, 0)
	assert.Error(t, err)

	m, err := New(0.6, 64)
	require.NoError(t, err)
	assert.Equal(t, 0.6, m.Tolerance())
	assert.Equal(t, 64, m.Length())
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(biometric.Descriptor{0, 0}, biometric.Descriptor{3, 4}), 1e-12)
	assert.Zero(t, Distance(biometric.Descriptor{1, 2}, biometric.Descriptor{1, 2}))
}

func FuzzMatchSelfIsZero(f *testing.F) {
	f.Add(int64(1), 3)
	f.Add(int64(99), 10)
	f.Fuzz(func(t *testing.T, seed int64, n int) {
		if n <= 0 || n > 50 {
			t.Skip()
		}
		rng := rand.New(rand.NewSource(seed))
		candidates := make([]Candidate, n)
		for i := range candidates {
			d := make(biometric.Descriptor, 8)
			for j := range d {
				d[j] = rng.NormFloat64()
			}
			candidates[i] = Candidate{NationalID: id.NationalID(rune('A' + i%26)), Descriptor: d}
		}
		pick := rng.Intn(n)
		res := Match(candidates[pick].Descriptor, candidates, 0.01, 8)
		require.True(t, res.Matched)
		require.Zero(t, res.Distance)
	})
}
