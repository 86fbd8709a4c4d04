// Package pattern implements the third extraction layer: in-process regular
// expressions and label-line heuristics over raw OCR text. Always available,
// always fast; unmatched rules simply contribute no field.
package pattern

import (
	"context"
	"strings"

	"fieldlens/internal/domain"
	"fieldlens/internal/normalize"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

// Extractor implements port.LayerExtractor for the local pattern layer.
type Extractor struct{}

// NewExtractor creates the local pattern extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Layer identifies this adapter as Layer 3.
func (e *Extractor) Layer() domain.LayerID { return domain.LayerLocalPattern }

// Extract runs the type's pattern rules against the document text. Rules
// with an AfterLabel only see the remainder of OCR lines starting with that
// label (the "12a"/"12b" box convention). The first match per field wins;
// the adapter never fails hard.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := domain.NewExtractionResult(e.Layer())
	lines := strings.Split(input.Text, "\n")

	for i := range tc.PatternRules {
		rule := &tc.PatternRules[i]
		if _, done := result.Fields[rule.Field]; done {
			continue
		}

		var raw string
		var found bool
		if rule.AfterLabel != "" {
			raw, found = findAfterLabel(lines, rule)
		} else {
			raw, found = rule.Find(input.Text)
		}
		if !found {
			continue
		}

		fv := domain.FieldValue{
			Name:       rule.Field,
			Raw:        strings.TrimSpace(raw),
			Kind:       tc.FieldKind(rule.Field),
			Confidence: rule.Confidence,
			Source:     e.Layer(),
		}
		normalize.Apply(&fv)
		result.Fields[rule.Field] = fv
	}

	return result, nil
}

// findAfterLabel scans lines for one starting with the rule's label and
// applies the rule's expression to the remainder of that line.
func findAfterLabel(lines []string, rule *typeconfig.PatternRule) (string, bool) {
	label := strings.ToLower(rule.AfterLabel)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(trimmed), label) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(label):])
		if raw, ok := rule.Find(rest); ok {
			return raw, true
		}
	}
	return "", false
}
