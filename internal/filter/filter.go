// Package filter builds the per-observation position filters and the
// compact prefix-check evaluators compiled from them, and assembles
// the 13-level filter tree that refines a 48-bit candidate space.
package filter

import (
	"errors"
	"fmt"

	"github.com/rawblock/seedfinder/internal/lcg"
	"github.com/rawblock/seedfinder/pkg/models"
)

// ErrDegenerateBounds is returned when an observation's layer carries
// no information (its acceptance window has zero width).
var ErrDegenerateBounds = errors.New("filter: degenerate bounds, observation carries no information")

// ErrArithmeticInvariant signals a programmer-error invariant breach:
// a refinement step produced a possible_range that did not shrink.
var ErrArithmeticInvariant = errors.New("filter: possible_range did not strictly decrease")

// PositionFilter is the arithmetic inequality that a candidate 48-bit
// LCG state must satisfy to be consistent with one observation.
type PositionFilter struct {
	PosHash       uint64
	LowerBound    uint64
	UpperBound    uint64
	PossibleRange uint64
}

// NewPositionFilter builds the filter for one observation, per the
// hash/bound derivation in the governing specification.
func NewPositionFilter(obs models.Observation) (PositionFilter, error) {
	lower, upper := bounds(obs.Y, obs.Kind)
	if upper <= lower {
		return PositionFilter{}, ErrDegenerateBounds
	}
	return PositionFilter{
		PosHash:       hashcode(obs.X, obs.Y, obs.Z) ^ lcg.M,
		LowerBound:    lower,
		UpperBound:    upper,
		PossibleRange: lcg.MASK48,
	}, nil
}

// hashcode folds (x, y, z) into a 48-bit position hash. The x term is
// computed with 32-bit wraparound (matching a 32-bit multiply) before
// widening to 64 bits; the z term is computed directly in 64 bits. Both
// wrap conventions must be preserved bit-for-bit or the fixture hash
// will disagree.
func hashcode(x, y, z int32) uint64 {
	xTerm := int64(int32(x * 3129871))
	zTerm := int64(z) * 116129781
	h := xTerm ^ zTerm ^ int64(y)
	h = h*h*42317861 + h*11
	return uint64(h) >> 16
}

// bounds derives the acceptance window [lower, upper) for one
// observation's y-layer and kind. Ceiling observations (y > 5) fold
// their layer back into the floor's 1..5 window before computing the
// bound fraction.
func bounds(y int32, kind models.ObservationKind) (lower, upper uint64) {
	lowerF, upperF := 0.0, 1.0
	layer := y

	if layer > 5 {
		layer -= 122
		b := float64(5-layer) / 5.0
		if kind == models.Bedrock {
			lowerF = b
		} else {
			upperF = b
		}
	} else {
		b := float64(5-layer) / 5.0
		if kind == models.Bedrock {
			upperF = b
		} else {
			lowerF = b
		}
	}

	lowerF *= float64(lcg.MASK48)
	upperF *= float64(lcg.MASK48)
	return uint64(lowerF), uint64(upperF)
}

// bound returns the width of the acceptance window.
func (f *PositionFilter) bound() uint64 {
	return f.UpperBound - f.LowerBound
}

// DiscardedSeeds estimates d(k): the expected fraction of low-k
// completions per surviving prefix this filter will reject, scaled by
// 2^k. Returns 0 when this filter contributes nothing at this k.
func (f *PositionFilter) DiscardedSeeds(lowerBits uint64) float64 {
	mask := (uint64(1) << lowerBits) - 1
	window := f.bound() + mask*lcg.M
	successChance := float64(window) / float64(f.PossibleRange)
	failChance := 1.0 - successChance
	if failChance <= 0 {
		return 0
	}
	return failChance * float64(uint64(1)<<lowerBits)
}

// CheckWithBits shrinks PossibleRange by the slack introduced at
// lowerBits, so subsequent DiscardedSeeds calls at a smaller k are
// computed against the tightened range.
func (f *PositionFilter) CheckWithBits(lowerBits uint64) error {
	mask := (uint64(1) << lowerBits) - 1
	newRange := mask*lcg.M + f.bound()
	if newRange >= f.PossibleRange {
		return fmt.Errorf("%w: new_range=%d possible_range=%d", ErrArithmeticInvariant, newRange, f.PossibleRange)
	}
	f.PossibleRange = newRange
	return nil
}

// CreateCheck shrinks the filter at lowerBits and compiles the
// resulting PrefixCheck.
func (f *PositionFilter) CreateCheck(lowerBits uint64) (PrefixCheck, error) {
	mask := (uint64(1) << lowerBits) - 1
	if err := f.CheckWithBits(lowerBits); err != nil {
		return PrefixCheck{}, err
	}
	return newPrefixCheck(f.PosHash, f.LowerBound, f.UpperBound, mask), nil
}

// PrefixCheck is a compact, branch-light evaluator for one
// PositionFilter's constraint against a 48-bit candidate prefix.
type PrefixCheck struct {
	PosHash   uint64
	Condition uint64
	Offset    uint64
}

func newPrefixCheck(posHash, lowerBound, upperBound, lowerBitMask uint64) PrefixCheck {
	offset := lcg.MASK48 - upperBound
	return PrefixCheck{
		PosHash:   posHash &^ lowerBitMask,
		Condition: (lowerBound + offset - lowerBitMask*lcg.M) & lcg.MASK48,
		Offset:    offset,
	}
}

// fillerCheck always evaluates false; it pads a layer's check list to
// a multiple of eight with no effect on correctness.
func fillerCheck() PrefixCheck {
	return PrefixCheck{Condition: 0}
}

// Evaluate returns true iff upperBits is definitively rejected by this
// constraint: no assignment of its unknown low bits can satisfy the
// acceptance window.
func (c PrefixCheck) Evaluate(upperBits uint64) bool {
	return ((upperBits^c.PosHash)*lcg.M+c.Offset)&lcg.MASK48 < c.Condition
}
