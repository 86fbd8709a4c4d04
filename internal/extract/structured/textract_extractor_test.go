package structured_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldlens/internal/domain"
	"fieldlens/internal/extract"
	"fieldlens/internal/extract/structured"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

type fakeTextract struct {
	lastInput *textract.AnalyzeDocumentInput
	output    *textract.AnalyzeDocumentOutput
	err       error
}

func (f *fakeTextract) AnalyzeDocument(_ context.Context, params *textract.AnalyzeDocumentInput, _ ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func TestExtract_SendsQueriesAndFeatureTypes(t *testing.T) {
	fake := &fakeTextract{output: &textract.AnalyzeDocumentOutput{
		Blocks: []types.Block{
			queryBlock("q1", "wages_tips", "a1"),
			answerBlock("a1", "50000.00", 90),
		},
	}}
	e := structured.NewExtractorWithClient(fake, 5*time.Second)

	tc := wageConfig()
	tc.Queries = []typeconfig.Query{
		{Text: "What are the wages, tips, and other compensation in box 1?", Alias: "wages_tips"},
	}

	res, err := e.Extract(context.Background(), port.ExtractInput{Bytes: []byte("%PDF-")}, tc)

	require.NoError(t, err)
	require.NotNil(t, fake.lastInput)
	assert.ElementsMatch(t,
		[]types.FeatureType{types.FeatureTypeQueries, types.FeatureTypeTables},
		fake.lastInput.FeatureTypes)
	require.NotNil(t, fake.lastInput.QueriesConfig)
	require.Len(t, fake.lastInput.QueriesConfig.Queries, 1)
	assert.Equal(t, "wages_tips", aws.ToString(fake.lastInput.QueriesConfig.Queries[0].Alias))

	assert.Equal(t, domain.LayerStructuredQuery, res.Layer)
	assert.Contains(t, res.Fields, "wages_tips")
}

func TestExtract_NoBytesIsUnavailable(t *testing.T) {
	e := structured.NewExtractorWithClient(&fakeTextract{}, 5*time.Second)

	_, err := e.Extract(context.Background(), port.ExtractInput{Text: "text only"}, wageConfig())

	require.Error(t, err)
	var unavailable *extract.AdapterUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestExtract_ServiceErrorIsUnavailable(t *testing.T) {
	fake := &fakeTextract{err: errors.New("throttled")}
	e := structured.NewExtractorWithClient(fake, 5*time.Second)

	_, err := e.Extract(context.Background(), port.ExtractInput{Bytes: []byte("%PDF-")}, wageConfig())

	require.Error(t, err)
	var unavailable *extract.AdapterUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.True(t, extract.IsAdapterFailure(err))
}

func TestExtract_DeadlineIsTimeout(t *testing.T) {
	fake := &fakeTextract{err: context.DeadlineExceeded}
	e := structured.NewExtractorWithClient(fake, 5*time.Second)

	_, err := e.Extract(context.Background(), port.ExtractInput{Bytes: []byte("%PDF-")}, wageConfig())

	require.Error(t, err)
	var timeout *extract.AdapterTimeoutError
	assert.ErrorAs(t, err, &timeout)
}
