package validator

import (
	"context"
	"fmt"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// requiredFieldsValidator checks that every field the type declares as
// required carries a non-null normalized value.
type requiredFieldsValidator struct{}

// NewRequiredFieldsValidator creates the required-field presence rule.
func NewRequiredFieldsValidator() Validator {
	return &requiredFieldsValidator{}
}

func (v *requiredFieldsValidator) RuleKey() string    { return "required.fields" }
func (v *requiredFieldsValidator) RuleName() string   { return "Required Field Presence" }
func (v *requiredFieldsValidator) Severity() Severity { return SeverityError }

func (v *requiredFieldsValidator) Validate(_ context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) []RuleResult {
	results := make([]RuleResult, 0, len(tc.RequiredFields))
	for _, name := range tc.RequiredFields {
		fv := record.Field(name)
		switch {
		case fv == nil:
			results = append(results, RuleResult{
				Field:    name,
				Expected: "non-empty value",
				Message:  fmt.Sprintf("required field %s was not extracted by any layer", name),
			})
		case fv.Normalized == nil:
			results = append(results, RuleResult{
				Field:    name,
				Expected: "normalized value",
				Actual:   fv.Raw,
				Message:  fmt.Sprintf("required field %s could not be normalized (raw: %q)", name, fv.Raw),
			})
		default:
			results = append(results, RuleResult{
				Passed:  true,
				Field:   name,
				Actual:  *fv.Normalized,
				Message: fmt.Sprintf("required field %s is present", name),
			})
		}
	}
	return results
}
