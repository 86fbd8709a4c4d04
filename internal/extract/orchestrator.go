// Package extract runs the three extraction layers against a document in
// priority order, escalating to the cheaper-but-weaker or
// costlier-but-stronger layers only when the primary layer leaves gaps.
package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"fieldlens/internal/domain"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

// DefaultConfidenceFloor is the per-field confidence below which a layer's
// answer is considered insufficient.
const DefaultConfidenceFloor = 0.6

// Orchestrator decides which layers run for a document and collects their
// results. Stateless across invocations; safe for concurrent use.
type Orchestrator struct {
	structured port.LayerExtractor
	generative port.LayerExtractor
	pattern    port.LayerExtractor
	floor      float64
}

// NewOrchestrator wires the three layer adapters. floor <= 0 selects the
// default per-field confidence floor.
func NewOrchestrator(structured, generative, pattern port.LayerExtractor, floor float64) *Orchestrator {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	return &Orchestrator{
		structured: structured,
		generative: generative,
		pattern:    pattern,
		floor:      floor,
	}
}

// Run executes the escalation policy:
//
//   - Layer 1 (structured query) always runs; its unavailability or timeout
//     fails the whole document, since no extraction was attempted.
//   - Layer 2 (generative) runs when any required field is missing from
//     Layer 1 or below the confidence floor.
//   - Layer 3 (local pattern) runs when any required field is still missing
//     after Layers 1-2, and also whenever either of the first two layers
//     reported any field below the floor; it is cheap and serves as the
//     safety net. When Layer 1's outcome already triggers both, Layers 2
//     and 3 run concurrently.
//
// Failures of Layers 2-3 degrade to empty results and are recorded in the
// returned LayerRun slice.
func (o *Orchestrator) Run(ctx context.Context, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) ([]*domain.ExtractionResult, []domain.LayerRun, error) {
	var runs []domain.LayerRun

	start := time.Now()
	primary, err := o.structured.Extract(ctx, input, tc)
	if err != nil {
		runs = append(runs, domain.LayerRun{
			Layer:     o.structured.Layer(),
			Attempted: true,
			Error:     err.Error(),
			Duration:  time.Since(start),
		})
		return nil, runs, fmt.Errorf("%w: %v", domain.ErrPrimaryLayerFailed, err)
	}
	runs = append(runs, domain.LayerRun{
		Layer:      o.structured.Layer(),
		Attempted:  true,
		Succeeded:  true,
		FieldCount: len(primary.Fields),
		Duration:   time.Since(start),
	})
	results := []*domain.ExtractionResult{primary}

	needSecondary := o.requiredGap(tc, primary)
	needTertiary := o.anyBelowFloor(primary)

	var secondary, tertiary *domain.ExtractionResult
	var secondaryRun, tertiaryRun domain.LayerRun

	switch {
	case needSecondary && needTertiary:
		// No data dependency between Layers 2 and 3; run them in parallel
		// and join before merging.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			secondary, secondaryRun = o.attempt(gctx, o.generative, input, tc)
			return nil
		})
		g.Go(func() error {
			tertiary, tertiaryRun = o.attempt(gctx, o.pattern, input, tc)
			return nil
		})
		_ = g.Wait()
	case needSecondary:
		secondary, secondaryRun = o.attempt(ctx, o.generative, input, tc)
		if o.requiredMissing(tc, primary, secondary) || o.anyBelowFloor(secondary) {
			needTertiary = true
			tertiary, tertiaryRun = o.attempt(ctx, o.pattern, input, tc)
		}
	case needTertiary:
		tertiary, tertiaryRun = o.attempt(ctx, o.pattern, input, tc)
	}

	if secondary != nil {
		results = append(results, secondary)
		runs = append(runs, secondaryRun)
	}
	if tertiary != nil {
		results = append(results, tertiary)
		runs = append(runs, tertiaryRun)
	}

	return results, runs, nil
}

// attempt runs one fallback layer, converting failure into an empty result.
func (o *Orchestrator) attempt(ctx context.Context, ex port.LayerExtractor, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, domain.LayerRun) {
	start := time.Now()
	res, err := ex.Extract(ctx, input, tc)
	run := domain.LayerRun{Layer: ex.Layer(), Attempted: true, Duration: time.Since(start)}
	if err != nil {
		log.Printf("extract.Orchestrator: %s layer failed: %v", ex.Layer(), err)
		run.Error = err.Error()
		return domain.NewExtractionResult(ex.Layer()), run
	}
	run.Succeeded = true
	run.FieldCount = len(res.Fields)
	return res, run
}

// requiredGap reports whether any required field is absent from the result
// or present below the confidence floor.
func (o *Orchestrator) requiredGap(tc *typeconfig.DocumentTypeConfig, res *domain.ExtractionResult) bool {
	for _, name := range tc.RequiredFields {
		fv, ok := res.Fields[name]
		if !ok || fv.Confidence < o.floor {
			return true
		}
	}
	return false
}

// requiredMissing reports whether any required field is entirely absent
// across all results so far.
func (o *Orchestrator) requiredMissing(tc *typeconfig.DocumentTypeConfig, results ...*domain.ExtractionResult) bool {
	for _, name := range tc.RequiredFields {
		found := false
		for _, res := range results {
			if res == nil {
				continue
			}
			if _, ok := res.Fields[name]; ok {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

func (o *Orchestrator) anyBelowFloor(res *domain.ExtractionResult) bool {
	if res == nil {
		return false
	}
	for _, fv := range res.Fields {
		if fv.Confidence < o.floor {
			return true
		}
	}
	return false
}
