package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldlens/internal/classifier"
	"fieldlens/internal/domain"
	"fieldlens/internal/engine"
	"fieldlens/internal/extract"
	"fieldlens/internal/normalize"
	"fieldlens/internal/port"
	"fieldlens/internal/reconcile"
	"fieldlens/internal/typeconfig"
	"fieldlens/internal/validator"
	"fieldlens/mocks"
)

const receiptText = "RECEIPT\nCorner Cafe\nSubtotal: 11.00\nTax: 1.50\nTotal: 12.50\nCashier: 12"

func confidentReceiptResult(layer domain.LayerID) *domain.ExtractionResult {
	res := domain.NewExtractionResult(layer)
	for name, raw := range map[string]string{
		"merchant_name":    "Corner Cafe",
		"transaction_date": "2024-03-01",
		"subtotal":         "11.00",
		"tax":              "1.50",
		"total":            "12.50",
	} {
		fv := domain.FieldValue{
			Name:       name,
			Raw:        raw,
			Kind:       kindOf(name),
			Confidence: 0.95,
			Source:     layer,
		}
		normalize.Apply(&fv)
		res.Fields[name] = fv
	}
	return res
}

func kindOf(name string) domain.FieldKind {
	switch name {
	case "transaction_date":
		return domain.KindDate
	case "merchant_name":
		return domain.KindString
	default:
		return domain.KindMoney
	}
}

func newPipeline(t *testing.T, structured, generative, pattern port.LayerExtractor, storage port.ObjectStorage) *engine.Engine {
	t.Helper()
	store, err := typeconfig.LoadStore("")
	require.NoError(t, err)

	return engine.New(
		classifier.New(store.All(), 0.3),
		store,
		extract.NewOrchestrator(structured, generative, pattern, 0.6),
		validator.NewEngine(validator.DefaultOptions()),
		storage,
		"documents",
		reconcile.DefaultOptions(),
	)
}

func newMock(layer domain.LayerID) *mocks.MockLayerExtractor {
	return &mocks.MockLayerExtractor{LayerName: layer}
}

func TestProcess_CleanReceipt(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentReceiptResult(domain.LayerStructuredQuery), nil)

	eng := newPipeline(t, structured, generative, pattern, nil)
	result, err := eng.Process(context.Background(), engine.ProcessInput{
		Bytes: []byte("%PDF-"),
		Text:  receiptText,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TypeReceipt, result.Type)
	assert.NotEqual(t, uuid.Nil, result.DocumentID)

	require.NotNil(t, result.Record)
	total := result.Record.Field("total")
	require.NotNil(t, total)
	assert.Equal(t, "12.50", total.NormalizedOr(""))

	require.NotNil(t, result.Validation)
	assert.Empty(t, result.Validation.Errors)
	assert.False(t, result.Validation.NeedsReview)

	require.Len(t, result.Layers, 1)
	assert.Equal(t, domain.LayerStructuredQuery, result.Layers[0].Layer)
}

func TestProcess_KeepsCallerDocumentID(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentReceiptResult(domain.LayerStructuredQuery), nil)

	eng := newPipeline(t, structured, newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), nil)
	id := uuid.New()
	result, err := eng.Process(context.Background(), engine.ProcessInput{
		DocumentID: id,
		Bytes:      []byte("%PDF-"),
		Text:       receiptText,
	})

	require.NoError(t, err)
	assert.Equal(t, id, result.DocumentID)
}

func TestProcess_EmptyInputFails(t *testing.T) {
	eng := newPipeline(t, newMock(domain.LayerStructuredQuery), newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), nil)

	_, err := eng.Process(context.Background(), engine.ProcessInput{})

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestProcess_FetchesFromStorageByKey(t *testing.T) {
	storage := &mocks.MockObjectStorage{}
	storage.On("Fetch", mock.Anything, "documents", "uploads/doc.pdf").
		Return(&port.FetchOutput{Bytes: []byte("%PDF-"), ContentType: "application/pdf"}, nil)

	structured := newMock(domain.LayerStructuredQuery)
	structured.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return len(in.Bytes) > 0 && in.ContentType == "application/pdf"
	}), mock.Anything).Return(confidentReceiptResult(domain.LayerStructuredQuery), nil)

	eng := newPipeline(t, structured, newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), storage)
	_, err := eng.Process(context.Background(), engine.ProcessInput{
		StorageKey: "uploads/doc.pdf",
		Text:       receiptText,
	})

	require.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestProcess_StorageFailurePropagates(t *testing.T) {
	storage := &mocks.MockObjectStorage{}
	storage.On("Fetch", mock.Anything, "documents", "uploads/missing.pdf").
		Return(nil, errors.New("no such key"))

	eng := newPipeline(t, newMock(domain.LayerStructuredQuery), newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), storage)
	_, err := eng.Process(context.Background(), engine.ProcessInput{StorageKey: "uploads/missing.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploads/missing.pdf")
}

func TestProcess_UnknownTypeStillExtractsAndFlagsReview(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	res := domain.NewExtractionResult(domain.LayerStructuredQuery)
	fv := domain.FieldValue{
		Name: "total", Raw: "42.00", Kind: domain.KindMoney,
		Confidence: 0.9, Source: domain.LayerStructuredQuery,
	}
	normalize.Apply(&fv)
	res.Fields["total"] = fv
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(res, nil)
	generative.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerGenerative), nil)
	pattern.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerLocalPattern), nil)

	eng := newPipeline(t, structured, generative, pattern, nil)
	result, err := eng.Process(context.Background(), engine.ProcessInput{
		Bytes: []byte("%PDF-"),
		Text:  "completely unrecognizable correspondence",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TypeUnknown, result.Type)
	assert.True(t, result.Validation.NeedsReview)

	found := false
	for _, w := range result.Validation.Warnings {
		if strings.Contains(w, "could not be determined") {
			found = true
		}
	}
	assert.True(t, found, "expected an unknown-type warning, got %v", result.Validation.Warnings)
}

func TestProcess_RepeatedCallsYieldIdenticalResults(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentReceiptResult(domain.LayerStructuredQuery), nil)

	eng := newPipeline(t, structured, newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), nil)
	id := uuid.New()
	input := engine.ProcessInput{
		DocumentID: id,
		Bytes:      []byte("%PDF-"),
		Text:       receiptText,
	}

	first, err := eng.Process(context.Background(), input)
	require.NoError(t, err)
	second, err := eng.Process(context.Background(), input)
	require.NoError(t, err)

	firstRecord, err := json.Marshal(first.Record)
	require.NoError(t, err)
	secondRecord, err := json.Marshal(second.Record)
	require.NoError(t, err)
	assert.Equal(t, string(firstRecord), string(secondRecord))

	firstValidation, err := json.Marshal(first.Validation)
	require.NoError(t, err)
	secondValidation, err := json.Marshal(second.Validation)
	require.NoError(t, err)
	assert.Equal(t, string(firstValidation), string(secondValidation))
}

func TestProcess_PrimaryLayerFailureFails(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, extract.NewAdapterUnavailable(domain.LayerStructuredQuery, errors.New("down")))

	eng := newPipeline(t, structured, newMock(domain.LayerGenerative), newMock(domain.LayerLocalPattern), nil)
	_, err := eng.Process(context.Background(), engine.ProcessInput{
		Bytes: []byte("%PDF-"),
		Text:  receiptText,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrimaryLayerFailed)
}
