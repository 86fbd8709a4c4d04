package validator

import (
	"context"
	"fmt"
	"math"

	"fieldlens/internal/domain"
	"fieldlens/internal/normalize"
	"fieldlens/internal/typeconfig"
)

// DefaultMoneyTolerance absorbs rounding differences in extracted amounts.
const DefaultMoneyTolerance = 0.01

// arithmeticValidator checks the type's declared identities, e.g.
// gross - deductions == net, over normalized money fields.
type arithmeticValidator struct {
	tolerance float64
}

// NewArithmeticValidator creates the identity rule with the given tolerance.
func NewArithmeticValidator(tolerance float64) Validator {
	if tolerance <= 0 {
		tolerance = DefaultMoneyTolerance
	}
	return &arithmeticValidator{tolerance: tolerance}
}

func (v *arithmeticValidator) RuleKey() string    { return "math.identities" }
func (v *arithmeticValidator) RuleName() string   { return "Arithmetic Identity" }
func (v *arithmeticValidator) Severity() Severity { return SeverityError }

func (v *arithmeticValidator) Validate(_ context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) []RuleResult {
	var results []RuleResult
	for _, id := range tc.Identities {
		result, ok := v.check(record, id)
		if !ok {
			// An identity with absent operands is not evaluated; the
			// required-field rule reports the gap.
			continue
		}
		results = append(results, result)
	}
	return results
}

func (v *arithmeticValidator) check(record *domain.MergedRecord, id typeconfig.ArithmeticIdentity) (RuleResult, bool) {
	var expected float64
	for _, name := range id.Plus {
		amt, ok := moneyField(record, name)
		if !ok {
			return RuleResult{}, false
		}
		expected += amt
	}
	for _, name := range id.Minus {
		amt, ok := moneyField(record, name)
		if !ok {
			return RuleResult{}, false
		}
		expected -= amt
	}
	actual, ok := moneyField(record, id.Equals)
	if !ok {
		return RuleResult{}, false
	}

	passed := math.Abs(expected-actual) <= v.tolerance
	result := RuleResult{
		Passed:   passed,
		Field:    id.Equals,
		Expected: fmtAmount(expected),
		Actual:   fmtAmount(actual),
	}
	if passed {
		result.Message = fmt.Sprintf("%s identity holds (%s)", id.Name, fmtAmount(actual))
	} else {
		result.Message = fmt.Sprintf("%s identity violated: expected %s = %s, got %s", id.Name, id.Equals, fmtAmount(expected), fmtAmount(actual))
	}
	return result, true
}

// lineItemSumValidator checks that the sum of extracted line items equals
// the type's designated total field (receipt subtotal).
type lineItemSumValidator struct {
	tolerance float64
}

// NewLineItemSumValidator creates the line-item sum rule.
func NewLineItemSumValidator(tolerance float64) Validator {
	if tolerance <= 0 {
		tolerance = DefaultMoneyTolerance
	}
	return &lineItemSumValidator{tolerance: tolerance}
}

func (v *lineItemSumValidator) RuleKey() string    { return "math.line_item_sum" }
func (v *lineItemSumValidator) RuleName() string   { return "Line Item Sum" }
func (v *lineItemSumValidator) Severity() Severity { return SeverityError }

func (v *lineItemSumValidator) Validate(_ context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) []RuleResult {
	if tc.LineItemSumField == "" || len(record.LineItems) == 0 {
		return nil
	}
	target, ok := moneyField(record, tc.LineItemSumField)
	if !ok {
		return nil
	}

	var sum float64
	for _, item := range record.LineItems {
		amt, ok := normalize.MoneyAmount(item.Amount)
		if !ok {
			// A single unparseable line item makes the sum meaningless.
			return nil
		}
		sum += amt
	}

	passed := math.Abs(sum-target) <= v.tolerance
	result := RuleResult{
		Passed:   passed,
		Field:    tc.LineItemSumField,
		Expected: fmtAmount(sum),
		Actual:   fmtAmount(target),
	}
	if passed {
		result.Message = fmt.Sprintf("line items sum to %s matching %s", fmtAmount(sum), tc.LineItemSumField)
	} else {
		result.Message = fmt.Sprintf("line items sum to %s but %s is %s", fmtAmount(sum), tc.LineItemSumField, fmtAmount(target))
	}
	return []RuleResult{result}
}

// moneyField returns the normalized amount of a money field, or ok=false
// when the field is absent or not normalized.
func moneyField(record *domain.MergedRecord, name string) (float64, bool) {
	fv := record.Field(name)
	if fv == nil || fv.Normalized == nil {
		return 0, false
	}
	return normalize.MoneyAmount(*fv.Normalized)
}

func fmtAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
