package random

import "math/rand"

// libcRand mirrors randwarn's RNG2 branch: reseed a private source from
// state and draw one value, without writing the draw back into state.
// Kept for parity with the original's libc rand() option; RNG3 is the
// generator actually recommended for reproducible runs (spec §4.7).
func libcRand(state *State) uint32 {
	src := rand.New(rand.NewSource(int64(*state)))
	return uint32(src.Int31()) & 0x7fff
}
