package engine

// SeedStream is a splitmix64 generator used to derive independent,
// reproducible seeds (per hand, per worker) from one base seed.
type SeedStream struct{ state uint64 }

func NewSeedStream(base uint64) *SeedStream { return &SeedStream{state: base} }

func (s *SeedStream) Next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// NextInt64 is Next as a non-negative rand.Source seed.
func (s *SeedStream) NextInt64() int64 { return int64(s.Next() >> 1) }
