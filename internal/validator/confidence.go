package validator

import (
	"context"
	"fmt"
	"sort"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// DefaultConfidenceFloor marks individual fields for review when any layer
// could only produce a shaky answer.
const DefaultConfidenceFloor = 0.6

// confidenceFloorValidator flags fields below the confidence floor. Soft:
// low confidence warns and marks the record for review but never blocks
// output.
type confidenceFloorValidator struct {
	floor float64
}

// NewConfidenceFloorValidator creates the per-field confidence floor rule.
func NewConfidenceFloorValidator(floor float64) Validator {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	return &confidenceFloorValidator{floor: floor}
}

func (v *confidenceFloorValidator) RuleKey() string    { return "confidence.floor" }
func (v *confidenceFloorValidator) RuleName() string   { return "Confidence Floor" }
func (v *confidenceFloorValidator) Severity() Severity { return SeverityWarning }

func (v *confidenceFloorValidator) Validate(_ context.Context, record *domain.MergedRecord, _ *typeconfig.DocumentTypeConfig) []RuleResult {
	names := make([]string, 0, len(record.Fields))
	for name := range record.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []RuleResult
	for _, name := range names {
		fv := record.Fields[name]
		if fv.Confidence >= v.floor {
			continue
		}
		results = append(results, RuleResult{
			Field:    name,
			Expected: fmt.Sprintf(">= %.2f", v.floor),
			Actual:   fmt.Sprintf("%.2f", fv.Confidence),
			Message:  fmt.Sprintf("field %s confidence %.2f is below the %.2f floor (source: %s)", name, fv.Confidence, v.floor, fv.Source),
		})
	}
	return results
}
