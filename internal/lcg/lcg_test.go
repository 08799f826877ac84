package lcg

import "testing"

func TestNextStatePreimagesRoundTrip(t *testing.T) {
	for s := uint64(1); s <= 10; s++ {
		next := NextState(s)
		pre := Preimages(next)
		found := false
		for _, p := range pre {
			if p == s {
				found = true
			}
		}
		if !found {
			t.Errorf("Preimages(NextState(%d)) = %v, want to contain %d", s, pre, s)
		}
	}
}

func TestPreimagesIsUnique(t *testing.T) {
	for s := uint64(0); s < 1000; s++ {
		pre := Preimages(NextState(s))
		if len(pre) != 1 {
			t.Fatalf("Preimages returned %d candidates for state %d, want exactly 1", len(pre), s)
		}
	}
}

func TestSurfaceRelationshipFixture(t *testing.T) {
	const (
		worldSeed  = 765906787396911863
		roofSeed   = 191924403737289
		floorSeed  = 18240473916414
		ceilingXOR = 343340730
		floorXOR   = 2042456806
	)

	rand := NextLong(worldSeed)
	if roof := NextLong(rand^ceilingXOR) & MASK48; roof != roofSeed {
		t.Errorf("ceiling relationship = %d, want %d", roof, roofSeed)
	}
	if floor := NextLong(rand^floorXOR) & MASK48; floor != floorSeed {
		t.Errorf("floor relationship = %d, want %d", floor, floorSeed)
	}
}

func TestReverseNextLongRoundTrip(t *testing.T) {
	for x := uint64(1); x < 10; x++ {
		y := NextLong(x)
		candidates := ReverseNextLong(y & MASK48)
		found := false
		for _, c := range candidates {
			if c == x {
				found = true
			}
		}
		if !found {
			t.Errorf("ReverseNextLong(NextLong(%d) & MASK48) = %v, want to contain %d", x, candidates, x)
		}
	}
}

func TestReverseNextLongEndToEnd(t *testing.T) {
	const (
		worldSeed = 765906787396911863
		roofSeed  = 191924403737289
		floorSeed = 18240473916414
		roofHash  = 343340730
		floorHash = 2042456806
	)

	found := false
	for _, common := range ReverseNextLong(roofSeed) {
		bedrock := common ^ roofHash
		secondary := NextLong(bedrock^floorHash) & MASK48
		if secondary != floorSeed {
			continue
		}
		for _, structureSeed := range ReverseNextLong(bedrock) {
			for _, preStructure := range ReverseNextLong(structureSeed) {
				if NextLong(preStructure) == worldSeed {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("cross-surface pipeline did not reproduce WORLD_SEED from ROOF_SEED/FLOOR_SEED")
	}
}
