// Package search implements the cross-surface verifier and the
// parallel driver that shards the 48-bit prefix space across worker
// goroutines, streaming progress and confirmed seeds through a bounded
// channel with cooperative cancellation.
package search

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rawblock/seedfinder/internal/cuda"
	"github.com/rawblock/seedfinder/internal/filter"
	"github.com/rawblock/seedfinder/pkg/models"
)

// chunkSize is 2^(12+25): every 2^25 twelve-bit-step iterations a
// worker reports progress and checks for cancellation.
const chunkSize uint64 = 1 << (12 + 25)

// prefixStep is the low-12-bits granularity of the top-bit prefix
// space; the filter tree's 13 levels refine exactly this many bits.
const prefixStep uint64 = 1 << 12

// prefixSpaceBits is the width of the sharded top-bit prefix space
// (2^36 thirteen-level prefixes, each covering 2^12 low bits).
const prefixSpaceBits = 36

// EstimateResults computes a before-search estimate of the number of
// 48-bit states consistent with every provided observation. Read-only;
// carries no correctness contract for the search itself.
func EstimateResults(observations []models.Observation) uint64 {
	return filter.EstimateResults(observations)
}

// Search builds the filter tree once and shards the 2^36 top-bit
// prefix space across threads goroutines, each sweeping its range in
// prefixStep increments and reporting a Progress event every
// chunkSize candidates. Seeds are emitted by the cross-surface
// verifier from whichever worker goroutine found them. Search blocks
// until every worker finishes or ctx is cancelled. The only error it
// returns is a tree-build failure (tree-underflow); workers never
// return an error, they stop early when ctx is cancelled.
//
// mode is accepted for interface parity with the library surface
// (search(obs, thread_count, mode, output_mode, sender)) and is not
// read here: the core's prefix-tree and verifier semantics are
// identical for every CrackerMode. Mode-dependent validity is enforced
// upstream, before observations ever reach Search, by
// ingest.ValidateForMode.
func Search(ctx context.Context, observations []models.Observation, threads int, mode models.CrackerMode, output models.OutputMode, events chan<- models.ProgressEvent) error {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	send := sender{events: events, ctx: ctx}

	root, err := filter.BuildTree(observations, func(secondary []filter.PositionFilter, primaryHash, secondaryHash uint64) filter.Verifier {
		return newVerifier(secondary, primaryHash, secondaryHash, output, send)
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	workerSend := sender{events: events, ctx: gctx}

	for t := 0; t < threads; t++ {
		t := t
		g.Go(func() error {
			start := (uint64(t) << prefixSpaceBits) / uint64(threads)
			end := (uint64(t+1) << prefixSpaceBits) / uint64(threads)
			start <<= 12
			end <<= 12

			for start < end {
				chunkEnd := min(start+chunkSize, end)
				cuda.SweepChunk(root, start, chunkEnd-start)

				if !workerSend.Send(models.ProgressEvent{Kind: models.ProgressSwept, Count: chunkEnd - start}) {
					return nil
				}
				start = chunkEnd
			}
			return nil
		})
	}

	return g.Wait()
}
