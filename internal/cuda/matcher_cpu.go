//go:build !cuda

package cuda

import "github.com/rawblock/seedfinder/internal/filter"

// SweepChunk evaluates every prefix-step-aligned candidate in
// [start, start+count) against root. This is the CPU fallback used
// when the engine is compiled without the 'cuda' build tag; it is
// also the only implementation that exists in this tree, since the
// GPU-accelerated kernel in matcher_cuda.go requires an externally
// built binding this repository does not vendor.
func SweepChunk(root *filter.Layer, start, count uint64) {
	const prefixStep = 1 << 12
	for upper := start; upper < start+count; upper += prefixStep {
		root.Run(upper)
	}
}
