package search

import (
	"context"

	"github.com/rawblock/seedfinder/internal/filter"
	"github.com/rawblock/seedfinder/internal/lcg"
	"github.com/rawblock/seedfinder/pkg/models"
)

// sender is the fallible progress sink: a context-bound channel send.
// A caller that cancels ctx is the Go equivalent of the source
// model's "consumer dropped the receiver" — Send returns false and
// the caller should stop producing.
type sender struct {
	events chan<- models.ProgressEvent
	ctx    context.Context
}

func (s sender) Send(ev models.ProgressEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// crossSurfaceVerifier is invoked once per 48-bit candidate that
// survives the primary surface's filter tree. It re-derives the
// common seed, rejects candidates inconsistent with the secondary
// surface's observations, and emits structure or world seeds for
// every survivor.
type crossSurfaceVerifier struct {
	checks        []filter.PrefixCheck
	primaryHash   uint64
	secondaryHash uint64
	output        models.OutputMode
	send          sender
}

func newVerifier(secondary []filter.PositionFilter, primaryHash, secondaryHash uint64, output models.OutputMode, send sender) *crossSurfaceVerifier {
	checks := make([]filter.PrefixCheck, 0, len(secondary))
	for i := range secondary {
		c, err := secondary[i].CreateCheck(0)
		if err != nil {
			continue
		}
		checks = append(checks, c)
	}
	return &crossSurfaceVerifier{
		checks:        checks,
		primaryHash:   primaryHash,
		secondaryHash: secondaryHash,
		output:        output,
		send:          send,
	}
}

// passesSecondary returns true iff no secondary-surface PrefixCheck
// rejects the candidate.
func (v *crossSurfaceVerifier) passesSecondary(secondarySeed uint64) bool {
	for _, c := range v.checks {
		if c.Evaluate(secondarySeed) {
			return false
		}
	}
	return true
}

// Run implements filter.Verifier.
func (v *crossSurfaceVerifier) Run(primarySeed uint64) {
	for _, common := range lcg.ReverseNextLong(primarySeed) {
		bedrock := common ^ v.primaryHash
		secondarySeed := lcg.NextLong(bedrock^v.secondaryHash) & lcg.MASK48
		if !v.passesSecondary(secondarySeed) {
			continue
		}

		for _, structureSeed := range lcg.ReverseNextLong(bedrock) {
			if v.output == models.OutputStructureSeed {
				if !v.send.Send(models.ProgressEvent{Kind: models.ProgressSeedFound, Seed: structureSeed}) {
					return
				}
				continue
			}
			for _, preStructure := range lcg.ReverseNextLong(structureSeed) {
				worldSeed := lcg.NextLong(preStructure)
				if !v.send.Send(models.ProgressEvent{Kind: models.ProgressSeedFound, Seed: worldSeed}) {
					return
				}
			}
		}
	}
}
