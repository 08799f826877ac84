package filter

import (
	"errors"
	"sort"

	"github.com/rawblock/seedfinder/pkg/models"
)

// ErrNoInformation is returned when no filter contributes at any
// refinement level — the tree would have nothing to search with.
var ErrNoInformation = errors.New("filter: no information, refusing to build an empty tree")

// padToEight pads checks with filler checks to a non-empty multiple
// of eight, so evaluators can process eight at a time with no tail
// branch.
func padToEight(checks []PrefixCheck) []PrefixCheck {
	if len(checks) == 0 {
		checks = append(checks, fillerCheck())
	}
	for len(checks)%8 != 0 {
		checks = append(checks, fillerCheck())
	}
	return checks
}

// Layer is one level of the filter tree for a fixed lowerBits k.
type Layer struct {
	Checks []PrefixCheck
	Split  uint64
	next   *Layer
	leaf   Verifier
}

// Verifier is implemented by internal/search; Layer only needs to
// invoke it at the bottom of the tree.
type Verifier interface {
	Run(seed uint64)
}

// SetNext wires this layer's next refinement level.
func (l *Layer) SetNext(next *Layer) { l.next = next }

// SetLeaf wires this layer's terminal cross-surface verifier.
func (l *Layer) SetLeaf(v Verifier) { l.leaf = v }

// Run evaluates a candidate prefix against this layer and recurses
// into the next level (both branches of the split bit) or the
// terminal verifier.
func (l *Layer) Run(upperBits uint64) {
	for _, c := range l.Checks {
		if c.Evaluate(upperBits) {
			return
		}
	}
	switch {
	case l.next != nil:
		l.next.Run(upperBits)
		l.next.Run(upperBits + l.Split)
	case l.leaf != nil:
		l.leaf.Run(upperBits)
	}
}

// newLayer builds a layer for lowerBits k from checks already sorted
// weakest-first and compiled at k, then pads to a multiple of eight.
func newLayer(lowerBits uint64, checks []PrefixCheck) *Layer {
	split := uint64(1)
	if lowerBits > 0 {
		split = uint64(1) << (lowerBits - 1)
	}
	return &Layer{Checks: padToEight(checks), Split: split}
}

// filterPower estimates the expected number of 48-bit states
// surviving this set of filters: prod(1 - d_i(0)) * 2^48.
func filterPower(filters []PositionFilter) uint64 {
	result := 1.0
	for i := range filters {
		result *= 1.0 - filters[i].DiscardedSeeds(0)
	}
	return uint64(result * float64(uint64(1)<<48))
}

// EstimateResults computes a before-search estimate across every
// provided observation, folding both surfaces together (per the
// original cracker's estimator, which is not surface-scoped).
func EstimateResults(observations []models.Observation) uint64 {
	filters := make([]PositionFilter, 0, len(observations))
	for _, obs := range observations {
		f, err := NewPositionFilter(obs)
		if err != nil {
			continue
		}
		filters = append(filters, f)
	}
	return filterPower(filters)
}

// splitSurfaces partitions observations into floor (y < 64) and
// ceiling (y >= 64) position filters, dropping any that carry no
// information.
func splitSurfaces(observations []models.Observation) (floor, ceiling []PositionFilter) {
	for _, obs := range observations {
		f, err := NewPositionFilter(obs)
		if err != nil {
			continue
		}
		if obs.Y < 64 {
			floor = append(floor, f)
		} else {
			ceiling = append(ceiling, f)
		}
	}
	return floor, ceiling
}

// BuildTree assembles the 13-level filter tree (k = 12..0) for the
// primary surface and wires the cross-surface Verifier leaf built
// from the secondary surface. verifierFactory receives the secondary
// surface's filters, its primary/secondary hash pair, and returns the
// terminal Verifier.
func BuildTree(
	observations []models.Observation,
	verifierFactory func(secondary []PositionFilter, primaryHash, secondaryHash uint64) Verifier,
) (*Layer, error) {
	floorFilters, ceilingFilters := splitSurfaces(observations)

	floorPower := filterPower(floorFilters)
	ceilingPower := filterPower(ceilingFilters)

	// Floor becomes primary only if it strictly narrows the space
	// more than ceiling; ties favor ceiling.
	floorIsPrimary := floorPower < ceilingPower

	primary, secondary := ceilingFilters, floorFilters
	primaryHash, secondaryHash := uint64(CeilingHash), uint64(FloorHash)
	if floorIsPrimary {
		primary, secondary = floorFilters, ceilingFilters
		primaryHash, secondaryHash = uint64(FloorHash), uint64(CeilingHash)
	}

	layers := make([]*Layer, 13)
	realChecks := 0
	// CreateCheck mutates each filter's PossibleRange in place, so
	// levels must compile in descending k order (12, 11, ..., 0):
	// DiscardedSeeds/CreateCheck at level k depends on the range left
	// behind by level k+1's CreateCheck calls.
	for k := 12; k >= 0; k-- {
		bits := uint64(k)
		type scored struct {
			d   float64
			idx int
		}
		var weighted []scored
		for i := range primary {
			d := primary[i].DiscardedSeeds(bits)
			if d > 0 {
				weighted = append(weighted, scored{d, i})
			}
		}
		sort.Slice(weighted, func(a, b int) bool { return weighted[a].d < weighted[b].d })

		checks := make([]PrefixCheck, 0, len(weighted))
		for _, w := range weighted {
			c, err := primary[w.idx].CreateCheck(bits)
			if err != nil {
				continue
			}
			checks = append(checks, c)
		}
		realChecks += len(checks)
		layers[12-k] = newLayer(bits, checks)
	}

	if realChecks == 0 && len(secondary) == 0 {
		return nil, ErrNoInformation
	}

	verifier := verifierFactory(secondary, primaryHash, secondaryHash)
	layers[len(layers)-1].SetLeaf(verifier)
	for i := len(layers) - 1; i > 0; i-- {
		layers[i-1].SetNext(layers[i])
	}
	return layers[0], nil
}
