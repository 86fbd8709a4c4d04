// Package engine wires classification, layered extraction, reconciliation
// and validation into the single Process entry point.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldlens/internal/classifier"
	"fieldlens/internal/domain"
	"fieldlens/internal/extract"
	"fieldlens/internal/port"
	"fieldlens/internal/reconcile"
	"fieldlens/internal/validator"
)

// ProcessInput identifies a document to run through the pipeline. Exactly one
// of Bytes or StorageKey should be set; Text carries any pre-extracted OCR
// text for classification and the text-only layers.
type ProcessInput struct {
	DocumentID  uuid.UUID
	Bytes       []byte
	ContentType string
	StorageKey  string
	Text        string
}

// ProcessResult is the full outcome of one pipeline run.
type ProcessResult struct {
	DocumentID               uuid.UUID                 `json:"document_id"`
	Type                     domain.TypeID             `json:"document_type"`
	ClassificationConfidence float64                   `json:"classification_confidence"`
	Record                   *domain.MergedRecord      `json:"record"`
	Validation               *domain.ValidationOutcome `json:"validation"`
	Layers                   []domain.LayerRun         `json:"layers"`
	Duration                 time.Duration             `json:"duration_ms"`
}

// Engine is the document processing pipeline.
type Engine struct {
	classifier   *classifier.Classifier
	store        port.TypeConfigStore
	orchestrator *extract.Orchestrator
	validator    *validator.Engine
	storage      port.ObjectStorage
	bucket       string
	mergeOpts    reconcile.Options
}

// New assembles the pipeline. storage may be nil when callers always pass
// raw bytes.
func New(
	cls *classifier.Classifier,
	store port.TypeConfigStore,
	orch *extract.Orchestrator,
	val *validator.Engine,
	storage port.ObjectStorage,
	bucket string,
	mergeOpts reconcile.Options,
) *Engine {
	return &Engine{
		classifier:   cls,
		store:        store,
		orchestrator: orch,
		validator:    val,
		storage:      storage,
		bucket:       bucket,
		mergeOpts:    mergeOpts,
	}
}

// Process runs the full pipeline: resolve bytes, classify, extract through
// the layer cascade, reconcile and validate. Unknown documents still flow
// through with the generic field set and are flagged for review.
func (e *Engine) Process(ctx context.Context, input ProcessInput) (*ProcessResult, error) {
	start := time.Now()

	if input.DocumentID == uuid.Nil {
		input.DocumentID = uuid.New()
	}

	if len(input.Bytes) == 0 && input.StorageKey != "" {
		if e.storage == nil {
			return nil, fmt.Errorf("storage key %q given but no object storage configured", input.StorageKey)
		}
		fetched, err := e.storage.Fetch(ctx, e.bucket, input.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("fetching document %s: %w", input.StorageKey, err)
		}
		input.Bytes = fetched.Bytes
		if input.ContentType == "" {
			input.ContentType = fetched.ContentType
		}
	}

	if len(input.Bytes) == 0 && input.Text == "" {
		return nil, domain.ErrEmptyDocument
	}

	docType, clsConfidence := e.classifier.Classify(input.Text)
	tc := e.store.Get(docType)
	if tc == nil {
		tc = e.store.Get(domain.TypeUnknown)
	}
	log.Printf("engine.Engine: document=%s classified as %s (confidence=%.2f)",
		input.DocumentID, docType, clsConfidence)

	extractInput := port.ExtractInput{
		DocumentID:  input.DocumentID,
		Bytes:       input.Bytes,
		ContentType: input.ContentType,
		Text:        input.Text,
	}
	results, runs, err := e.orchestrator.Run(ctx, extractInput, tc)
	if err != nil {
		return nil, fmt.Errorf("extracting document %s: %w", input.DocumentID, err)
	}

	record := reconcile.Merge(results, domain.LayerPriority, e.mergeOpts)
	outcome := e.validator.Validate(ctx, record, tc)

	if docType == domain.TypeUnknown {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("document type could not be determined (best score %.2f); generic extraction applied", clsConfidence))
		outcome.NeedsReview = true
	}

	result := &ProcessResult{
		DocumentID:               input.DocumentID,
		Type:                     docType,
		ClassificationConfidence: clsConfidence,
		Record:                   record,
		Validation:               outcome,
		Layers:                   runs,
		Duration:                 time.Since(start),
	}
	log.Printf("engine.Engine: document=%s processed in %s fields=%d needs_review=%v",
		input.DocumentID, result.Duration.Round(time.Millisecond), len(record.Fields), outcome.NeedsReview)
	return result, nil
}
