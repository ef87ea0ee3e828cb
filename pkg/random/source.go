// Package random provides the deterministic sequence provider shared by the
// trial iterator and the multi-staircase scheduler.
//
// A Source is an explicitly owned, injectable dependency: call ordering
// against one Source is part of the engine's reproducibility contract. Given
// the same seed and the same sequence of draws, every shuffle and selection
// replays identically.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// Source wraps a seeded pseudo-random generator.
// It is not safe for concurrent use; the engine is single-threaded by
// contract and callers in multi-threaded hosts must serialize access.
type Source struct {
	rng  *mrand.Rand
	seed int64
}

// New creates a Source from an explicit seed.
func New(seed int64) *Source {
	return &Source{
		rng:  mrand.New(mrand.NewSource(seed)),
		seed: seed,
	}
}

// NewFromEntropy creates a Source seeded from system entropy, falling back
// to the wall clock if the entropy read fails.
func NewFromEntropy() *Source {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return New(time.Now().UnixNano())
	}
	return New(int64(binary.LittleEndian.Uint64(buf[:])))
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Intn returns a uniform int in [0, n). Panics if n <= 0, matching math/rand.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Shuffle performs an in-place Fisher-Yates shuffle of n elements.
// Every permutation is equally likely given the generator.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Perm returns a random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	return s.rng.Perm(n)
}
