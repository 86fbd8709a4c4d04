// Package classifier assigns a document type from extracted text using the
// weighted keyword rules declared per type. Pure: no I/O, never fails,
// always returns a best-effort answer.
package classifier

import (
	"strings"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// DefaultMinConfidence is the normalized score a type must clear to be
// considered a confident classification.
const DefaultMinConfidence = 0.3

// Classifier scores document text against the configured types.
type Classifier struct {
	configs       []*typeconfig.DocumentTypeConfig
	minConfidence float64
}

// New builds a classifier over configs in declared priority order. Configs
// without keywords (the generic fallback) never win and are skipped.
func New(configs []*typeconfig.DocumentTypeConfig, minConfidence float64) *Classifier {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Classifier{configs: configs, minConfidence: minConfidence}
}

// Classify returns the best matching type and its normalized confidence.
// Types whose required terms are absent are disqualified outright. Scores
// normalize by the type's maximum possible score and clamp to [0,1]. Ties
// break toward the earlier-declared type. Below the minimum confidence the
// sentinel unknown type is returned with the best score found, so callers
// may still attempt generic extraction.
func (c *Classifier) Classify(text string) (domain.TypeID, float64) {
	lowered := strings.ToLower(text)

	best := domain.TypeUnknown
	bestScore := 0.0

	for _, tc := range c.configs {
		if len(tc.Keywords) == 0 {
			continue
		}
		score, ok := c.score(lowered, tc)
		if !ok {
			continue
		}
		// Strictly greater: earlier-declared types win ties.
		if score > bestScore {
			bestScore = score
			best = tc.ID
		}
	}

	if bestScore < c.minConfidence {
		return domain.TypeUnknown, bestScore
	}
	return best, bestScore
}

// score returns the normalized keyword score, or ok=false when a required
// term is missing.
func (c *Classifier) score(lowered string, tc *typeconfig.DocumentTypeConfig) (float64, bool) {
	var matched float64
	for _, k := range tc.Keywords {
		if strings.Contains(lowered, strings.ToLower(k.Term)) {
			matched += k.Weight
		} else if k.Required {
			return 0, false
		}
	}
	max := tc.MaxKeywordScore()
	if max <= 0 {
		return 0, false
	}
	score := matched / max
	if score > 1 {
		score = 1
	}
	return score, true
}
