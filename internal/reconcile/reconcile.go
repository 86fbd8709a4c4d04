// Package reconcile merges per-layer extraction results into one record
// using source precedence and confidence, with an agreement bonus when
// independent layers produce the same value.
package reconcile

import (
	"sort"
	"strings"

	"fieldlens/internal/domain"
)

// Options carries the merge thresholds.
type Options struct {
	// PrimaryThreshold: a Layer 1 candidate at or above this confidence
	// wins outright.
	PrimaryThreshold float64
	// SecondaryThreshold: failing that, a Layer 2 candidate at or above
	// this confidence wins.
	SecondaryThreshold float64
	// TieMargin: candidates within this confidence distance are considered
	// tied; the higher-priority layer wins.
	TieMargin float64
	// AgreementBonus is added to the winner's confidence when another layer
	// agrees with it within normalization tolerance.
	AgreementBonus float64
}

// DefaultOptions returns the standard merge thresholds.
func DefaultOptions() Options {
	return Options{
		PrimaryThreshold:   0.6,
		SecondaryThreshold: 0.5,
		TieMargin:          0.05,
		AgreementBonus:     0.05,
	}
}

// Merge reconciles the layers' field maps into a single record. Every field
// present in any layer appears in the output, even below any confidence
// threshold: callers get to see low-confidence data instead of losing it.
// Line items and transactions are concatenated and deduplicated, not merged
// field-by-field.
func Merge(results []*domain.ExtractionResult, priority []domain.LayerID, opts Options) *domain.MergedRecord {
	record := &domain.MergedRecord{
		Fields:  make(map[string]domain.FieldValue),
		Sources: make(map[string]domain.LayerID),
	}

	for _, name := range fieldNames(results) {
		candidates := collect(results, name, priority)
		winner := pickWinner(candidates, priority, opts)
		winner.Confidence = agreementBoost(winner, candidates, opts)
		record.Fields[name] = winner
		record.Sources[name] = winner.Source
	}

	record.LineItems = dedupeLineItems(results)
	record.Transactions = dedupeTransactions(results)
	return record
}

// fieldNames returns the sorted union of field names across all layers, so
// merging is deterministic.
func fieldNames(results []*domain.ExtractionResult) []string {
	seen := make(map[string]bool)
	var names []string
	for _, res := range results {
		if res == nil {
			continue
		}
		for name := range res.Fields {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// collect gathers all candidates for a field, ordered by layer priority.
func collect(results []*domain.ExtractionResult, name string, priority []domain.LayerID) []domain.FieldValue {
	var candidates []domain.FieldValue
	for _, res := range results {
		if res == nil {
			continue
		}
		if fv, ok := res.Fields[name]; ok {
			candidates = append(candidates, fv)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return domain.PriorityIndex(candidates[i].Source, priority) < domain.PriorityIndex(candidates[j].Source, priority)
	})
	return candidates
}

// pickWinner applies the precedence rules: a confident primary-layer answer
// wins outright, then a confident secondary-layer answer, then the highest
// confidence remaining with ties broken toward the higher-priority layer.
func pickWinner(candidates []domain.FieldValue, priority []domain.LayerID, opts Options) domain.FieldValue {
	for _, c := range candidates {
		if c.Source == priority[0] && c.Confidence >= opts.PrimaryThreshold {
			return c
		}
	}
	if len(priority) > 1 {
		for _, c := range candidates {
			if c.Source == priority[1] && c.Confidence >= opts.SecondaryThreshold {
				return c
			}
		}
	}
	// Highest confidence wins; candidates are in priority order, so a
	// lower-priority layer must beat the incumbent by more than the tie
	// margin to take the field.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence+opts.TieMargin {
			best = c
		}
	}
	return best
}

// agreementBoost implements cross-validation-lite: when a candidate from
// another layer agrees with the winner within normalization tolerance, the
// output confidence becomes max(candidate confidences) + bonus, capped at 1.
func agreementBoost(winner domain.FieldValue, candidates []domain.FieldValue, opts Options) float64 {
	maxConf := winner.Confidence
	agreed := false
	for _, c := range candidates {
		if c.Source == winner.Source {
			continue
		}
		if valuesAgree(winner, c) {
			agreed = true
			if c.Confidence > maxConf {
				maxConf = c.Confidence
			}
		}
	}
	if !agreed {
		return winner.Confidence
	}
	boosted := maxConf + opts.AgreementBonus
	if boosted > 1.0 {
		boosted = 1.0
	}
	return boosted
}

// valuesAgree compares two candidates: numeric and identifier fields must
// match exactly after normalization; free-text fields match
// case-insensitively.
func valuesAgree(a, b domain.FieldValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case domain.KindString:
		return strings.EqualFold(strings.TrimSpace(a.NormalizedOr(a.Raw)), strings.TrimSpace(b.NormalizedOr(b.Raw)))
	default:
		if a.Normalized == nil || b.Normalized == nil {
			return false
		}
		return *a.Normalized == *b.Normalized
	}
}

func dedupeLineItems(results []*domain.ExtractionResult) []domain.LineItem {
	seen := make(map[string]bool)
	var items []domain.LineItem
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, item := range res.LineItems {
			key := itemKey(item.Amount, item.RawAmount, item.Description)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, item)
		}
	}
	return items
}

func dedupeTransactions(results []*domain.ExtractionResult) []domain.Transaction {
	seen := make(map[string]bool)
	var txns []domain.Transaction
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, txn := range res.Transactions {
			key := txn.Date + "|" + itemKey(txn.Amount, txn.RawAmount, txn.Description)
			if seen[key] {
				continue
			}
			seen[key] = true
			txns = append(txns, txn)
		}
	}
	return txns
}

// itemKey builds the dedupe key from the normalized amount (raw when
// normalization failed) and the case-folded description.
func itemKey(amount, rawAmount, description string) string {
	if amount == "" {
		amount = rawAmount
	}
	return amount + "|" + strings.ToLower(strings.TrimSpace(description))
}
