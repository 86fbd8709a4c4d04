package validator

import (
	"context"
	"log"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// DefaultReviewAverage: records whose mean field confidence falls below this
// need human review even when every rule passes.
const DefaultReviewAverage = 0.8

// Options carries the validation thresholds.
type Options struct {
	MoneyTolerance  float64
	ConfidenceFloor float64
	ReviewAverage   float64
}

// DefaultOptions returns the standard validation thresholds.
func DefaultOptions() Options {
	return Options{
		MoneyTolerance:  DefaultMoneyTolerance,
		ConfidenceFloor: DefaultConfidenceFloor,
		ReviewAverage:   DefaultReviewAverage,
	}
}

// Engine runs all registered rules against a merged record. The policy is
// permissive by default: a best-effort record is always returned and the
// caller gates downstream actions on NeedsReview.
type Engine struct {
	registry      *Registry
	reviewAverage float64
}

// NewEngine creates a validation engine with the built-in rules registered.
func NewEngine(opts Options) *Engine {
	if opts.ReviewAverage <= 0 {
		opts.ReviewAverage = DefaultReviewAverage
	}
	registry := NewRegistry()
	registry.Register(NewRequiredFieldsValidator())
	registry.Register(NewArithmeticValidator(opts.MoneyTolerance))
	registry.Register(NewLineItemSumValidator(opts.MoneyTolerance))
	registry.Register(NewDateOrderValidator())
	registry.Register(NewConfidenceFloorValidator(opts.ConfidenceFloor))
	return &Engine{registry: registry, reviewAverage: opts.ReviewAverage}
}

// Registry exposes the rule registry so callers can add custom rules before
// first use.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Validate evaluates every registered rule and folds failures into the
// outcome. All rules run even when one fails; hard failures become errors,
// soft ones warnings.
func (e *Engine) Validate(ctx context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) *domain.ValidationOutcome {
	outcome := &domain.ValidationOutcome{
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, v := range e.registry.All() {
		for _, result := range v.Validate(ctx, record, tc) {
			if result.Passed {
				continue
			}
			if v.Severity() == SeverityError {
				outcome.Errors = append(outcome.Errors, result.Message)
			} else {
				outcome.Warnings = append(outcome.Warnings, result.Message)
			}
		}
	}

	avg := record.AverageConfidence()
	outcome.NeedsReview = len(outcome.Errors) > 0 || len(outcome.Warnings) > 0 || avg < e.reviewAverage

	log.Printf("validator.Engine: type=%s errors=%d warnings=%d avg_confidence=%.2f needs_review=%v",
		tc.ID, len(outcome.Errors), len(outcome.Warnings), avg, outcome.NeedsReview)
	return outcome
}
