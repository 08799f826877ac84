// Package lcg implements the Java-style 48-bit linear congruential
// generator at the heart of the search: the forward step used to build
// every position filter, its trivial single-step inverse, and the
// richer two-step Random.nextLong() composite (and its inverse) used
// by the cross-surface verifier and the inverse-LCG reporter.
package lcg

const (
	// M is the LCG multiplier shared by every Java java.util.Random
	// instance.
	M uint64 = 0x5DEECE66D
	// A is the LCG addend.
	A uint64 = 11
	// MASK48 masks a value to the low 48 bits.
	MASK48 uint64 = (1 << 48) - 1

	// mInv is the modular inverse of M mod 2^48. M is odd so it is
	// invertible; NextState is therefore a bijection on [0, 2^48) and
	// Preimages always returns exactly one predecessor.
	mInv uint64 = 246154705703781
)

// NextState advances one 48-bit LCG state. Total; never fails.
func NextState(s uint64) uint64 {
	return (s*M + A) & MASK48
}

// prevState inverts one NextState step. Exploits that M is odd (hence
// invertible mod 2^48): s = (s'-A) * mInv mod 2^48.
func prevState(s uint64) uint64 {
	return ((s - A) * mInv) & MASK48
}

// Preimages returns the predecessors of s under NextState. Because
// NextState is a bijection on the 48-bit state space this is always a
// single-element slice; for every returned p, NextState(p) == s.
func Preimages(s uint64) []uint64 {
	return []uint64{prevState(s)}
}

// NextLong reproduces java.util.Random(seed).nextLong(): scramble the
// seed, draw two 32-bit values via next(32) advancing the LCG once per
// draw, and combine them as a signed 64-bit value exactly as the JDK
// does (hi<<32 + lo, in signed 64-bit arithmetic — lo's sign can
// "borrow" into the high word).
func NextLong(seed uint64) uint64 {
	state := scramble(seed)
	state, hi := next32(state)
	_, lo := next32(state)
	return uint64(int64(hi)<<32 + int64(lo))
}

// scramble applies java.util.Random's setSeed mixing.
func scramble(seed uint64) uint64 {
	return (seed ^ M) & MASK48
}

// next32 advances the state once and returns the signed 32-bit value
// java.util.Random.next(32) would produce.
func next32(state uint64) (newState uint64, out int32) {
	newState = NextState(state)
	return newState, int32(newState >> 16)
}

// ReverseNextLong inverts NextLong masked to 48 bits: given
// out = NextLong(seed) & MASK48, returns every seed candidate whose
// masked nextLong() output equals out. Because the top 16 bits of the
// true 64-bit nextLong() output are discarded by the MASK48 truncation,
// this is genuinely ambiguous (0, 1, or 2 candidates), resolved by an
// O(2^16) search over the unknown low 16 bits of the second next(32)
// draw rather than an O(2^32) brute force over the whole draw.
func ReverseNextLong(out uint64) []uint64 {
	lo := out & 0xFFFFFFFF
	// mid16 is the true low 16 bits of the first next(32) draw (the
	// high internal state after one NextState step). The 64-bit
	// nextLong() value is (int64(hi)<<32 + int64(lo)); when lo's sign
	// bit is set, the signed add borrows one into the 32..47 bit range
	// of the masked output, so mid16 must be corrected by +1 to
	// recover the true high-draw bits.
	mid16 := (out >> 32) & 0xFFFF
	if lo&0x80000000 != 0 {
		mid16 = (mid16 + 1) & 0xFFFF
	}

	var seeds []uint64
	base := lo << 16
	for r := uint64(0); r < 1<<16; r++ {
		secondState := (base | r) & MASK48
		firstState := prevState(secondState)
		if (firstState>>16)&0xFFFF != mid16 {
			continue
		}
		internal := prevState(firstState)
		seeds = append(seeds, internal^M)
	}
	return seeds
}
