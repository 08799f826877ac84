package filter

// Surface XOR constants separating the two independent LCG channels
// sampled at floor (y < 64) and ceiling (y >= 64) positions.
const (
	FloorHash   uint64 = 2042456806
	CeilingHash uint64 = 343340730
)
