// Package prand implements the xorshift64 generator used throughout
// bilist for skip list level selection and key synthesis.
//
// It intentionally does not satisfy math/rand.Source: callers that need
// a *rand.Rand (none currently do) should wrap State with their own
// adapter. Keeping a minimal, dependency-free generator here lets its
// 64-bit state be snapshotted verbatim by the persistence marshaller.
package prand

// State is a seedable xorshift64 generator. The zero value is usable
// but will produce the degenerate all-zero stream until Seed is called
// with a non-zero value.
type State struct {
	a uint64
}

// New returns a State seeded with seed.
func New(seed uint64) *State {
	s := &State{}
	s.Seed(seed)
	return s
}

// Seed resets the generator's internal state.
func (s *State) Seed(seed uint64) {
	s.a = seed
}

// Next returns the next 64-bit value in the stream, advancing state.
// Shifts are fixed at {13, -7, 17} to match the reference generator.
func (s *State) Next() uint64 {
	x := s.a
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.a = x
	return x
}

// Next32 returns the next value reduced to the range [0, 2^31).
func (s *State) Next32() uint32 {
	return uint32(s.Next() % (1 << 31))
}

// Uint64 returns the raw internal state, for snapshotting.
func (s *State) Uint64() uint64 {
	return s.a
}

// Restore sets the internal state directly, for loading a snapshot.
// Unlike Seed it carries no seeding semantics beyond assignment; the
// two are equivalent today but kept distinct so callers document intent.
func (s *State) Restore(state uint64) {
	s.a = state
}
