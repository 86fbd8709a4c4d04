package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldlens/internal/domain"
	"fieldlens/internal/extract"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
	"fieldlens/mocks"
)

func testConfig() *typeconfig.DocumentTypeConfig {
	return &typeconfig.DocumentTypeConfig{
		ID:             domain.TypeReceipt,
		Fields:         []typeconfig.FieldSpec{{Name: "total", Kind: domain.KindMoney}},
		RequiredFields: []string{"total"},
	}
}

func confidentResult(layer domain.LayerID, name string, confidence float64) *domain.ExtractionResult {
	res := domain.NewExtractionResult(layer)
	normalized := "10.00"
	res.Fields[name] = domain.FieldValue{
		Name:       name,
		Raw:        "10.00",
		Normalized: &normalized,
		Kind:       domain.KindMoney,
		Confidence: confidence,
		Source:     layer,
	}
	return res
}

func newMock(layer domain.LayerID) *mocks.MockLayerExtractor {
	return &mocks.MockLayerExtractor{LayerName: layer}
}

func TestRun_ConfidentPrimaryShortCircuits(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerStructuredQuery, "total", 0.9), nil)

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Len(t, runs, 1)
	assert.True(t, runs[0].Succeeded)
	generative.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
	pattern.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_MissingRequiredFieldTriggersSecondary(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerStructuredQuery), nil)
	generative.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerGenerative, "total", 0.9), nil)

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, runs, 2)
	pattern.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LowConfidenceTriggersBothFallbacksConcurrently(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerStructuredQuery, "total", 0.3), nil)
	generative.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerGenerative, "total", 0.9), nil)
	pattern.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerLocalPattern, "total", 0.5), nil)

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Len(t, runs, 3)
	generative.AssertExpectations(t)
	pattern.AssertExpectations(t)
}

func TestRun_SecondaryGapEscalatesToTertiary(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	// Primary misses the required field entirely but reports nothing below
	// the floor, so only the secondary fires at first; the secondary also
	// misses it, which pulls in the tertiary.
	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerStructuredQuery), nil)
	generative.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerGenerative), nil)
	pattern.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerLocalPattern, "total", 0.5), nil)

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.NoError(t, err)
	assert.Len(t, results, 3)
	require.Len(t, runs, 3)
	assert.Equal(t, domain.LayerLocalPattern, runs[2].Layer)
}

func TestRun_PrimaryFailureIsFatal(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, extract.NewAdapterUnavailable(domain.LayerStructuredQuery, errors.New("connection refused")))

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrimaryLayerFailed)
	assert.Nil(t, results)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Attempted)
	assert.False(t, runs[0].Succeeded)
	assert.NotEmpty(t, runs[0].Error)
}

func TestRun_FallbackFailureDegradesToEmptyResult(t *testing.T) {
	structured := newMock(domain.LayerStructuredQuery)
	generative := newMock(domain.LayerGenerative)
	pattern := newMock(domain.LayerLocalPattern)

	structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewExtractionResult(domain.LayerStructuredQuery), nil)
	generative.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, extract.NewAdapterUnavailable(domain.LayerGenerative, errors.New("api key missing")))
	pattern.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(confidentResult(domain.LayerLocalPattern, "total", 0.5), nil)

	o := extract.NewOrchestrator(structured, generative, pattern, 0.6)
	results, runs, err := o.Run(context.Background(), port.ExtractInput{Text: "total 10.00"}, testConfig())

	require.NoError(t, err)
	assert.Len(t, results, 3)

	require.Len(t, runs, 3)
	assert.Equal(t, domain.LayerGenerative, runs[1].Layer)
	assert.False(t, runs[1].Succeeded)
	assert.NotEmpty(t, runs[1].Error)
	assert.Empty(t, results[1].Fields)
}
