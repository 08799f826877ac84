//go:build cuda

package cuda

/*
#cgo LDFLAGS: -L${SRCDIR} -lkernel -L/usr/local/cuda/lib64 -lcudart
#include "bindings.h"
*/
import "C"
import (
	"log"
	"unsafe"

	"github.com/rawblock/seedfinder/internal/filter"
)

// SweepChunk offloads one worker's chunk sweep to the GPU, flattening
// the filter tree's per-level check lists into primitive arrays the
// CUDA kernel can walk without Go pointer indirection. Building with
// -tags cuda requires a prebuilt libkernel.a against the CUDA toolkit;
// this file mirrors the gating the CPU-only build already uses.
func SweepChunk(root *filter.Layer, start, count uint64) {
	levels := flattenLevels(root)
	if len(levels) == 0 {
		return
	}

	log.Printf("[CUDA] Offloading chunk [%d, %d) across %d levels to GPU", start, start+count, len(levels))

	cLevels := make([]C.uint64_t, 0, len(levels)*3)
	for _, lv := range levels {
		cLevels = append(cLevels, C.uint64_t(len(lv.posHashes)), C.uint64_t(lv.split))
	}

	var posHashes, conditions, offsets []uint64
	for _, lv := range levels {
		posHashes = append(posHashes, lv.posHashes...)
		conditions = append(conditions, lv.conditions...)
		offsets = append(offsets, lv.offsets...)
	}

	if len(posHashes) == 0 {
		return
	}

	C.SweepChunkCUDA(
		(*C.uint64_t)(unsafe.Pointer(&posHashes[0])), C.int(len(posHashes)),
		(*C.uint64_t)(unsafe.Pointer(&conditions[0])),
		(*C.uint64_t)(unsafe.Pointer(&offsets[0])),
		C.uint64_t(start), C.uint64_t(count),
	)
}

type flatLevel struct {
	posHashes  []uint64
	conditions []uint64
	offsets    []uint64
	split      uint64
}

// flattenLevels is a placeholder walk; the real kernel binding would
// also need the tree's branch structure (next/leaf) to be meaningful,
// which this extension point does not yet serialize.
func flattenLevels(root *filter.Layer) []flatLevel {
	if root == nil {
		return nil
	}
	return []flatLevel{{split: root.Split}}
}
