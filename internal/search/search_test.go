package search

import (
	"context"
	"testing"

	"github.com/rawblock/seedfinder/internal/filter"
	"github.com/rawblock/seedfinder/pkg/models"
)

// blocks reproduces the 24-observation fixture shared with
// internal/filter's tests: two ceiling clusters and two floor clusters,
// each split bedrock/other, consistent with a single known world seed.
func blocks() []models.Observation {
	return []models.Observation{
		{X: 18, Y: 123, Z: -117, Kind: models.Other},
		{X: 18, Y: 123, Z: -118, Kind: models.Other},
		{X: 18, Y: 123, Z: -119, Kind: models.Other},
		{X: 33, Y: 126, Z: -99, Kind: models.Other},
		{X: 35, Y: 126, Z: -99, Kind: models.Other},
		{X: 38, Y: 126, Z: -99, Kind: models.Other},
		{X: 19, Y: 123, Z: -117, Kind: models.Bedrock},
		{X: 19, Y: 123, Z: -118, Kind: models.Bedrock},
		{X: 19, Y: 123, Z: -119, Kind: models.Bedrock},
		{X: 25, Y: 126, Z: -112, Kind: models.Bedrock},
		{X: 25, Y: 126, Z: -113, Kind: models.Bedrock},
		{X: 25, Y: 126, Z: -114, Kind: models.Bedrock},
		{X: 11, Y: 1, Z: -111, Kind: models.Other},
		{X: 11, Y: 1, Z: -110, Kind: models.Other},
		{X: 11, Y: 1, Z: -109, Kind: models.Other},
		{X: 14, Y: 4, Z: -97, Kind: models.Other},
		{X: 14, Y: 4, Z: -96, Kind: models.Other},
		{X: 14, Y: 4, Z: -94, Kind: models.Other},
		{X: 10, Y: 1, Z: -111, Kind: models.Bedrock},
		{X: 10, Y: 1, Z: -110, Kind: models.Bedrock},
		{X: 10, Y: 1, Z: -109, Kind: models.Bedrock},
		{X: 11, Y: 4, Z: -97, Kind: models.Bedrock},
		{X: 11, Y: 4, Z: -96, Kind: models.Bedrock},
		{X: 11, Y: 4, Z: -94, Kind: models.Bedrock},
	}
}

const (
	roofSeed  uint64 = 191924403737289
	worldSeed uint64 = 765906787396911863
)

// TestBuildTreeFindsWorldSeed runs the compiled filter tree directly at
// the 36-bit prefix containing ROOF_SEED (rather than driving the full
// Search sweep across the entire prefix space, which is impractical as
// a unit test) and checks the cross-surface verifier reports WORLD_SEED
// exactly once.
func TestBuildTreeFindsWorldSeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan models.ProgressEvent, 16)
	send := sender{events: events, ctx: ctx}

	root, err := filter.BuildTree(blocks(), func(secondary []filter.PositionFilter, primaryHash, secondaryHash uint64) filter.Verifier {
		return newVerifier(secondary, primaryHash, secondaryHash, models.OutputWorldSeed, send)
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	prefix := roofSeed &^ uint64(0xFFF)
	root.Run(prefix)
	close(events)

	var found []uint64
	for ev := range events {
		if ev.Kind == models.ProgressSeedFound {
			found = append(found, ev.Seed)
		}
	}

	if len(found) != 1 || found[0] != worldSeed {
		t.Fatalf("Run(%d) emitted %v, want exactly [%d]", prefix, found, worldSeed)
	}
}

// TestBuildTreeRejectsNoInformation checks that a set of observations
// carrying no usable bound (every filter degenerate) surfaces
// ErrNoInformation rather than silently building an empty tree.
func TestBuildTreeRejectsNoInformation(t *testing.T) {
	_, err := filter.BuildTree(nil, func(secondary []filter.PositionFilter, primaryHash, secondaryHash uint64) filter.Verifier {
		t.Fatal("verifierFactory should not be invoked when there is no information")
		return nil
	})
	if err != filter.ErrNoInformation {
		t.Fatalf("BuildTree(nil) error = %v, want %v", err, filter.ErrNoInformation)
	}
}

func TestEstimateResultsPositive(t *testing.T) {
	est := EstimateResults(blocks())
	if est == 0 {
		t.Fatal("EstimateResults returned 0 for a well-constrained observation set")
	}
	if est >= uint64(1)<<48 {
		t.Fatalf("EstimateResults = %d, want < 2^48", est)
	}
}
