// Package typeconfig defines the per-document-type configuration that
// drives classification, layer extraction, and validation. Configurations
// are loaded once at process start and never mutated afterwards.
package typeconfig

import (
	"fmt"
	"regexp"

	"fieldlens/internal/domain"
)

// Keyword is one weighted classification term. Required terms disqualify the
// type entirely when absent from the document text.
type Keyword struct {
	Term     string  `yaml:"term"`
	Weight   float64 `yaml:"weight"`
	Required bool    `yaml:"required"`
}

// FieldSpec declares a field the type expects and how to normalize it.
type FieldSpec struct {
	Name string           `yaml:"name"`
	Kind domain.FieldKind `yaml:"kind"`
}

// Query is one structured-query service question with its output alias.
type Query struct {
	Text  string `yaml:"text"`
	Alias string `yaml:"alias"`
}

// PatternRule is one local-pattern extraction rule. When AfterLabel is set,
// the rule only applies to the remainder of OCR lines starting with that
// label (the "12a"/"12b" box convention on wage statements).
type PatternRule struct {
	Field      string  `yaml:"field"`
	Expr       string  `yaml:"expr"`
	Group      int     `yaml:"group"`
	Confidence float64 `yaml:"confidence"`
	AfterLabel string  `yaml:"after_label"`

	re *regexp.Regexp
}

// Compile validates and caches the rule's regular expression.
func (r *PatternRule) Compile() error {
	re, err := regexp.Compile(r.Expr)
	if err != nil {
		return fmt.Errorf("pattern rule %s: %w", r.Field, err)
	}
	r.re = re
	return nil
}

// Find applies the rule to a text fragment, returning the captured group.
func (r *PatternRule) Find(text string) (string, bool) {
	if r.re == nil {
		if err := r.Compile(); err != nil {
			return "", false
		}
	}
	m := r.re.FindStringSubmatch(text)
	if m == nil || r.Group >= len(m) {
		return "", false
	}
	return m[r.Group], true
}

// TableRules classifies detected table rows by first-column keyword match.
type TableRules struct {
	EarningTerms   []string `yaml:"earning_terms"`
	DeductionTerms []string `yaml:"deduction_terms"`
	// Transactions switches table mapping from line items to bank-statement
	// transactions (date, description, amount columns).
	Transactions bool `yaml:"transactions"`
}

// ArithmeticIdentity declares sum(Plus) - sum(Minus) == Equals over
// normalized money fields, within the engine's money tolerance.
type ArithmeticIdentity struct {
	Name   string   `yaml:"name"`
	Plus   []string `yaml:"plus"`
	Minus  []string `yaml:"minus"`
	Equals string   `yaml:"equals"`
}

// DateOrdering declares that Earlier must strictly precede Later.
type DateOrdering struct {
	Earlier string `yaml:"earlier"`
	Later   string `yaml:"later"`
}

// DocumentTypeConfig is the immutable per-type configuration record.
type DocumentTypeConfig struct {
	ID          domain.TypeID `yaml:"id"`
	DisplayName string        `yaml:"display_name"`

	Keywords []Keyword `yaml:"keywords"`

	Fields         []FieldSpec `yaml:"fields"`
	RequiredFields []string    `yaml:"required_fields"`

	Queries        []Query       `yaml:"queries"`
	PromptPreamble string        `yaml:"prompt_preamble"`
	PatternRules   []PatternRule `yaml:"pattern_rules"`
	TableRules     TableRules    `yaml:"table_rules"`

	Identities []ArithmeticIdentity `yaml:"identities"`
	Orderings  []DateOrdering       `yaml:"orderings"`
	// LineItemSumField names a money field that must equal the sum of all
	// extracted line items (receipt subtotal). Empty disables the check.
	LineItemSumField string `yaml:"line_item_sum_field"`
}

// FieldKind returns the declared kind for a field name, defaulting to string.
func (tc *DocumentTypeConfig) FieldKind(name string) domain.FieldKind {
	for _, f := range tc.Fields {
		if f.Name == name {
			return f.Kind
		}
	}
	return domain.KindString
}

// MaxKeywordScore is the highest score a document can reach for this type.
func (tc *DocumentTypeConfig) MaxKeywordScore() float64 {
	var max float64
	for _, k := range tc.Keywords {
		max += k.Weight
	}
	return max
}

// IsRequired reports whether a field is in the required set.
func (tc *DocumentTypeConfig) IsRequired(name string) bool {
	for _, f := range tc.RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}

// ResponseSchema builds the JSON schema the generative layer's response must
// satisfy: a "fields" object restricted to the declared field names, plus an
// optional numeric "confidence" map.
func (tc *DocumentTypeConfig) ResponseSchema() map[string]any {
	props := make(map[string]any, len(tc.Fields))
	for _, f := range tc.Fields {
		props[f.Name] = map[string]any{"type": []any{"string", "null"}}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fields": map[string]any{
				"type":                 "object",
				"properties":           props,
				"additionalProperties": false,
			},
			"confidence": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number"},
			},
		},
		"required": []any{"fields"},
	}
}

// compile pre-compiles all pattern rules and checks structural invariants.
func (tc *DocumentTypeConfig) compile() error {
	if tc.ID == "" {
		return fmt.Errorf("type config missing id")
	}
	known := make(map[string]bool, len(tc.Fields))
	for _, f := range tc.Fields {
		known[f.Name] = true
	}
	for _, rf := range tc.RequiredFields {
		if !known[rf] {
			return fmt.Errorf("type %s: required field %q not declared", tc.ID, rf)
		}
	}
	for i := range tc.PatternRules {
		if err := tc.PatternRules[i].Compile(); err != nil {
			return fmt.Errorf("type %s: %w", tc.ID, err)
		}
	}
	return nil
}
