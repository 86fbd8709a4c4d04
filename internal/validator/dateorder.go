package validator

import (
	"context"
	"fmt"
	"time"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// dateOrderValidator checks the type's declared date orderings, e.g.
// period start strictly before period end.
type dateOrderValidator struct{}

// NewDateOrderValidator creates the date ordering rule.
func NewDateOrderValidator() Validator {
	return &dateOrderValidator{}
}

func (v *dateOrderValidator) RuleKey() string    { return "dates.ordering" }
func (v *dateOrderValidator) RuleName() string   { return "Date Ordering" }
func (v *dateOrderValidator) Severity() Severity { return SeverityError }

func (v *dateOrderValidator) Validate(_ context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) []RuleResult {
	var results []RuleResult
	for _, ord := range tc.Orderings {
		earlier, ok := dateField(record, ord.Earlier)
		if !ok {
			continue
		}
		later, ok := dateField(record, ord.Later)
		if !ok {
			continue
		}

		passed := earlier.Before(later)
		result := RuleResult{
			Passed:   passed,
			Field:    ord.Later,
			Expected: fmt.Sprintf("after %s", earlier.Format("2006-01-02")),
			Actual:   later.Format("2006-01-02"),
		}
		if passed {
			result.Message = fmt.Sprintf("%s precedes %s", ord.Earlier, ord.Later)
		} else {
			result.Message = fmt.Sprintf("%s (%s) does not precede %s (%s)",
				ord.Earlier, earlier.Format("2006-01-02"), ord.Later, later.Format("2006-01-02"))
		}
		results = append(results, result)
	}
	return results
}

func dateField(record *domain.MergedRecord, name string) (time.Time, bool) {
	fv := record.Field(name)
	if fv == nil || fv.Normalized == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", *fv.Normalized)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
