package domain

import "time"

// BoundingRegion locates an extracted value on a page. Coordinates are
// ratios of page width/height, as returned by the structured-query service.
// The engine treats regions as opaque; they exist for UI highlighting.
type BoundingRegion struct {
	Page   int     `json:"page"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FieldValue is the atomic unit produced by any extraction layer.
// Normalized is nil when canonicalization failed; Raw is always retained
// for audit.
type FieldValue struct {
	Name       string          `json:"name"`
	Raw        string          `json:"raw"`
	Normalized *string         `json:"normalized"`
	Kind       FieldKind       `json:"kind"`
	Confidence float64         `json:"confidence"`
	Source     LayerID         `json:"source"`
	Region     *BoundingRegion `json:"region,omitempty"`
}

// NormalizedOr returns the normalized value, or fallback when normalization failed.
func (f *FieldValue) NormalizedOr(fallback string) string {
	if f.Normalized == nil {
		return fallback
	}
	return *f.Normalized
}

// LineItem is one classified row from a detected table (earnings/deductions
// on pay stubs and wage statements, purchased items on receipts).
type LineItem struct {
	Description string           `json:"description"`
	Amount      string           `json:"amount"` // canonical money form, empty if unparseable
	RawAmount   string           `json:"raw_amount"`
	Category    LineItemCategory `json:"category"`
}

// Transaction is one row from a bank statement's transaction table.
type Transaction struct {
	Date        string `json:"date"` // canonical date form, empty if unparseable
	Description string `json:"description"`
	Amount      string `json:"amount"`
	RawAmount   string `json:"raw_amount"`
}

// ExtractionResult is the per-layer output. Created once per adapter
// invocation, never mutated afterwards, and discarded after merge.
type ExtractionResult struct {
	Layer        LayerID               `json:"layer"`
	Fields       map[string]FieldValue `json:"fields"`
	LineItems    []LineItem            `json:"line_items,omitempty"`
	Transactions []Transaction         `json:"transactions,omitempty"`
}

// NewExtractionResult returns an empty result for a layer.
func NewExtractionResult(layer LayerID) *ExtractionResult {
	return &ExtractionResult{Layer: layer, Fields: make(map[string]FieldValue)}
}

// MergedRecord holds one winning FieldValue per field name, plus merged
// line items and transactions. Every field present in any layer's output
// appears here, even below the confidence floor, so callers can see
// low-confidence data rather than silently losing it.
type MergedRecord struct {
	Fields       map[string]FieldValue `json:"fields"`
	LineItems    []LineItem            `json:"line_items,omitempty"`
	Transactions []Transaction         `json:"transactions,omitempty"`
	Sources      map[string]LayerID    `json:"sources"`
}

// Field returns the merged value for a field name, or nil when no layer
// produced one.
func (r *MergedRecord) Field(name string) *FieldValue {
	if fv, ok := r.Fields[name]; ok {
		return &fv
	}
	return nil
}

// AverageConfidence is the mean confidence across all merged fields.
// Records with no fields report zero.
func (r *MergedRecord) AverageConfidence() float64 {
	if len(r.Fields) == 0 {
		return 0
	}
	var sum float64
	for _, fv := range r.Fields {
		sum += fv.Confidence
	}
	return sum / float64(len(r.Fields))
}

// ValidationOutcome is the result of running a document type's validation
// rules against a merged record. Never persisted by the engine.
type ValidationOutcome struct {
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	NeedsReview bool     `json:"needs_review"`
}

// LayerRun records whether a layer was attempted and how it fared, so
// callers can see which fallbacks actually fired.
type LayerRun struct {
	Layer      LayerID       `json:"layer"`
	Attempted  bool          `json:"attempted"`
	Succeeded  bool          `json:"succeeded"`
	Error      string        `json:"error,omitempty"`
	FieldCount int           `json:"field_count"`
	Duration   time.Duration `json:"duration_ns"`
}
