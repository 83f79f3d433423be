package flow

import (
	"math/rand"
	"sync"
)

// Decider is the single source of randomness for every decision point in the
// flows (station, trip, assurance, contact, seat, food picks). Substituting a
// scripted implementation replays an exact decision sequence in tests.
type Decider interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// Seeded is a Decider backed by a seeded PRNG. Safe for concurrent use.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded creates a Decider from an explicit seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// NewDecider creates a Decider with a random seed.
func NewDecider() *Seeded {
	return NewSeeded(rand.Int63())
}

func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Scripted is a Decider that replays a fixed choice sequence. When a sequence
// is exhausted, Intn yields 0 and Float64 yields 1 (so probabilistic branches
// are not taken). Not safe for concurrent use; intended for tests.
type Scripted struct {
	Ints   []int
	Floats []float64

	intIdx   int
	floatIdx int
}

func (s *Scripted) Intn(n int) int {
	if s.intIdx >= len(s.Ints) {
		return 0
	}
	v := s.Ints[s.intIdx] % n
	s.intIdx++
	return v
}

func (s *Scripted) Float64() float64 {
	if s.floatIdx >= len(s.Floats) {
		return 1
	}
	v := s.Floats[s.floatIdx]
	s.floatIdx++
	return v
}
