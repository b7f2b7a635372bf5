// Package rng implements the random-bit-generator state consumed and advanced by
// sampling kernels.
//
// A State is a small counter-based generator: two key words fixed at seeding time
// and a counter that advances on every draw. It is the single mutable resource of
// the execution layer; ownership is explicit:
//
//   - exactly one live "current" State exists per lineage, and a draw under the
//     in-place policy advances it destructively;
//   - the copy policy instead advances an independent Clone, leaving the original
//     observably unchanged.
//
// States are deliberately cheap to clone (three words).
package rng

import (
	"fmt"
	"math/rand"
	"time"
)

// State is a steppable random-bit-generator state. The zero value is a valid,
// deterministic state; use New or NewFromSeed for a properly seeded one.
//
// State is not safe for concurrent use: ordering between draws must be imposed by
// the caller (thread each draw's output state into the next draw's input).
type State struct {
	key     [2]uint64
	counter uint64
}

// NewFromSeed creates a generator state from the given seed. Equal seeds produce
// equal draw sequences.
func NewFromSeed(seed int64) *State {
	src := rand.New(rand.NewSource(seed))
	return &State{key: [2]uint64{src.Uint64(), src.Uint64()}}
}

// New creates a generator state seeded from the nanosecond clock.
func New() *State {
	return NewFromSeed(time.Now().UTC().UnixNano())
}

// FromWords reconstructs a state from its three words, as returned by Words.
func FromWords(words [3]uint64) *State {
	return &State{key: [2]uint64{words[0], words[1]}, counter: words[2]}
}

// Words returns the three words of the state: two key words and the counter.
func (s *State) Words() [3]uint64 {
	return [3]uint64{s.key[0], s.key[1], s.counter}
}

// Clone returns an independent copy of the state. Advancing the clone leaves the
// original unchanged.
func (s *State) Clone() *State {
	clone := *s
	return &clone
}

// Position returns the number of 64-bit draws consumed so far.
func (s *State) Position() uint64 { return s.counter }

// Equal compares key and position.
func (s *State) Equal(s2 *State) bool {
	if s == nil || s2 == nil {
		return s == s2
	}
	return s.key == s2.key && s.counter == s2.counter
}

// String implements fmt.Stringer.
func (s *State) String() string {
	return fmt.Sprintf("rng.State{key: %016x%016x, position: %d}", s.key[0], s.key[1], s.counter)
}

// Uint64 draws 64 uniform random bits, advancing the state by one position.
func (s *State) Uint64() uint64 {
	s.counter++
	return mix(s.key[0]^s.counter, s.key[1])
}

// Float64 draws a uniform value in the half-open interval [0, 1), advancing the
// state by one position.
func (s *State) Float64() float64 {
	// 53 bits of mantissa.
	return float64(s.Uint64()>>11) / (1 << 53)
}

// IntN draws a uniform integer in [0, n), advancing the state by one position.
// It panics if n <= 0.
func (s *State) IntN(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("rng.State.IntN(%d): n must be positive", n))
	}
	return int(s.Uint64() % uint64(n))
}

// mix is a splitmix64-style finalizer over the counter and key words.
func mix(a, b uint64) uint64 {
	z := a + 0x9e3779b97f4a7c15
	z ^= b
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
