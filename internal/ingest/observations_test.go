package ingest

import (
	"strings"
	"testing"

	"github.com/rawblock/seedfinder/pkg/models"
)

func TestParseObservationsValidLines(t *testing.T) {
	input := strings.Join([]string{
		"# comment, skipped",
		"",
		"11 4 -97 bedrock",
		"14 4 -97 OTHER",
		"18 123 -117",
	}, "\n")

	obs, errs := ParseObservations(strings.NewReader(input), models.ModeNormal)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []models.Observation{
		{X: 11, Y: 4, Z: -97, Kind: models.Bedrock},
		{X: 14, Y: 4, Z: -97, Kind: models.Other},
		{X: 18, Y: 123, Z: -117, Kind: models.Other},
	}
	if len(obs) != len(want) {
		t.Fatalf("got %d observations, want %d", len(obs), len(want))
	}
	for i := range want {
		if obs[i] != want[i] {
			t.Errorf("observation %d = %+v, want %+v", i, obs[i], want[i])
		}
	}
}

func TestParseObservationsReportsPerLineErrors(t *testing.T) {
	input := strings.Join([]string{
		"11 4 -97 bedrock",
		"not a number here",
		"11 64 -97 bedrock",
		"99999999999 4 0 bedrock",
		"1 4 0 sideways",
	}, "\n")

	obs, errs := ParseObservations(strings.NewReader(input), models.ModeNormal)
	if len(obs) != 1 {
		t.Fatalf("got %d valid observations, want 1", len(obs))
	}
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), errs)
	}
}

// TestParseObservationsPaper1_18DropsModeViolations checks that a
// redundant same-kind entry and a bedrock-above-non-bedrock column
// pair are both dropped with a diagnostic under ModePaper1_18, while
// the same lines are left untouched under ModeNormal.
func TestParseObservationsPaper1_18DropsModeViolations(t *testing.T) {
	input := strings.Join([]string{
		"11 4 -97 bedrock",
		"11 4 -97 bedrock", // redundant same-kind duplicate
		"11 1 -97 other",   // below the y=4 bedrock reading in the same column: invalid
		"11 4 -96 other",
		"11 1 -96 bedrock", // bedrock sits below the other reading here: fine
	}, "\n")

	obs, errs := ParseObservations(strings.NewReader(input), models.ModePaper1_18)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d valid observations, want 3: %+v", len(obs), obs)
	}

	normalObs, normalErrs := ParseObservations(strings.NewReader(input), models.ModeNormal)
	if len(normalErrs) != 0 {
		t.Fatalf("ModeNormal unexpectedly reported errors: %v", normalErrs)
	}
	if len(normalObs) != 5 {
		t.Fatalf("ModeNormal got %d observations, want 5", len(normalObs))
	}
}

func TestValidLayer(t *testing.T) {
	cases := map[int32]bool{
		0: false, 1: true, 4: true, 5: false,
		122: false, 123: true, 126: true, 127: false,
	}
	for y, want := range cases {
		if got := validLayer(y); got != want {
			t.Errorf("validLayer(%d) = %v, want %v", y, got, want)
		}
	}
}
