package questiongen

import "math/rand/v2"

// newRand returns a PCG-backed source. A nil seed draws one from the
// global generator.
func newRand(seed *uint64) *rand.Rand {
	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// callSeed derives the sampling seed for one model call. Every batch and
// attempt gets its own value so a retry does not replay the rejected reply.
// It is kept within 31 bits for backends with int32 seeds.
func callSeed(seed *uint64, batch, attempt int) *int64 {
	if seed == nil {
		return nil
	}
	s := int64((*seed + uint64(batch)*1_000 + uint64(attempt)) & 0x7fffffff)
	return &s
}
