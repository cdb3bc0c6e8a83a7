// Package randutil provides the injectable randomness capability used by the
// deck and the per-hand seed derivation used by table actors.
//
// Fairness here rests on seed secrecy, not RNG strength: the generator is a
// deterministic mixing PRNG so that an identical seed reproduces an identical
// shuffle for audit replay. It is not a cryptographic source.
package randutil

import "hash/fnv"

const goldenRatio64 = 0x9e3779b97f4a7c15

// RNG is the randomness capability injected into shuffling.
// Implementations must be deterministic for a given seed.
type RNG interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Source is a deterministic seeded RNG based on splitmix64.
type Source struct {
	state uint64
}

// New returns a Source seeded deterministically from the provided int64.
func New(seed int64) *Source {
	return &Source{state: mix(uint64(seed))}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	s.state += goldenRatio64
	// 53 bits of mixed state give a uniform float in [0, 1).
	return float64(mix(s.state)>>11) / (1 << 53)
}

// Intn returns a value in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("randutil: Intn called with non-positive n")
	}
	return int(s.Float64() * float64(n))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// SeedFrom derives a seed from string parts via FNV-1a. Table actors use it
// to turn (tableID, handsPlayed, callCount) into a per-hand shuffle seed.
func SeedFrom(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}
