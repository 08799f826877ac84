package ingest

import (
	"fmt"

	"github.com/rawblock/seedfinder/pkg/models"
)

// column identifies one (x, z) vertical line restricted to a single
// bedrock surface (floor y in 1..4, ceiling y in 123..126), the
// grouping PAPER_1_18's per-column rules are scoped to.
type column struct {
	x, z  int32
	floor bool
}

// ValidateForMode applies the collaborator's per-column input rules.
// Under ModeNormal every observation passed in is returned unchanged:
// the vanilla generator has no per-column validity constraint for the
// collaborator to enforce upstream of the core. Under ModePaper1_18
// two violations are checked within each column (same x, z, and
// surface) and dropped with a diagnostic rather than aborting the
// whole observation set:
//
//   - a Bedrock reading strictly above an Other reading in the same
//     column is invalid;
//   - a duplicate (x, y, z) observation repeating the Kind already
//     recorded for that exact position is redundant.
//
// It is unclear from the source whether redundant same-kind
// observations should be silently dropped or flagged; this reports
// them rather than guessing silence was intended.
func ValidateForMode(observations []models.Observation, mode models.CrackerMode) ([]models.Observation, []error) {
	if mode != models.ModePaper1_18 {
		return observations, nil
	}

	var errs []error
	kept := make([]models.Observation, 0, len(observations))
	seen := make(map[models.Observation]bool)
	byColumn := make(map[column][]models.Observation)

	for _, o := range observations {
		if seen[o] {
			errs = append(errs, fmt.Errorf("redundant %s observation at (%d,%d,%d) dropped", o.Kind, o.X, o.Y, o.Z))
			continue
		}

		col := column{x: o.X, z: o.Z, floor: o.Y <= 4}
		rejected := false
		for _, other := range byColumn[col] {
			switch {
			case o.Kind == models.Bedrock && other.Kind == models.Other && o.Y > other.Y:
				errs = append(errs, fmt.Errorf("bedrock observation at (%d,%d,%d) sits above a non-bedrock reading in the same column, dropped", o.X, o.Y, o.Z))
				rejected = true
			case o.Kind == models.Other && other.Kind == models.Bedrock && other.Y > o.Y:
				errs = append(errs, fmt.Errorf("non-bedrock observation at (%d,%d,%d) sits below a bedrock reading in the same column, dropped", o.X, o.Y, o.Z))
				rejected = true
			}
			if rejected {
				break
			}
		}
		if rejected {
			continue
		}

		seen[o] = true
		byColumn[col] = append(byColumn[col], o)
		kept = append(kept, o)
	}

	return kept, errs
}
