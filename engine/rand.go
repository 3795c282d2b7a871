/*
rand.go - Injectable randomness

PURPOSE:
  All probabilistic behavior (engagement rolls, follower growth and decay,
  inbound DM generation, range-type recurring amounts) goes through this
  interface so tests can supply deterministic sequences and assert exact
  outcomes.
*/
package engine

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// =============================================================================
// RAND - Randomness source consumed by the engines
// =============================================================================

// Rand is the randomness contract the engines consume.
type Rand interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// Between draws a uniform int64 in [min, max] inclusive.
func Between(r Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(r.IntN(int(max-min+1)))
}

// =============================================================================
// SEEDED - Production source (PCG, deterministic per seed)
// =============================================================================

type seeded struct {
	rng *rand.Rand
}

// NewSeededRand returns a Rand backed by a PCG generator. Non-cryptographic
// randomness is intentional: simulation behavior, not security.
func NewSeededRand(seed int64) Rand {
	return &seeded{rng: rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))}
}

func (s *seeded) IntN(n int) int   { return s.rng.IntN(n) }
func (s *seeded) Float64() float64 { return s.rng.Float64() }

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// =============================================================================
// FIXED - Test source replaying scripted values
// =============================================================================

// FixedRand replays scripted values; both slices wrap around when
// exhausted. Zero-value fields fall back to 0 / 0.0.
type FixedRand struct {
	Ints   []int
	Floats []float64
	ii, fi int
}

func (f *FixedRand) IntN(n int) int {
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ii%len(f.Ints)]
	f.ii++
	if v >= n {
		v = n - 1
	}
	return v
}

func (f *FixedRand) Float64() float64 {
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.fi%len(f.Floats)]
	f.fi++
	return v
}
