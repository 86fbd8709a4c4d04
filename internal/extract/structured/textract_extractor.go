// Package structured implements the primary extraction layer on top of the
// AWS Textract AnalyzeDocument API, using per-type query lists and table
// detection.
package structured

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"fieldlens/internal/config"
	"fieldlens/internal/domain"
	"fieldlens/internal/extract"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

const defaultTimeout = 10 * time.Second

// API is the subset of the Textract client the extractor uses.
type API interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// Extractor implements port.LayerExtractor for the structured-query layer.
type Extractor struct {
	client  API
	timeout time.Duration
}

// NewExtractor builds an Extractor backed by a real Textract client.
func NewExtractor(cfg *config.TextractConfig) (*Extractor, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var txOpts []func(*textract.Options)
	if cfg.Endpoint != "" {
		txOpts = append(txOpts, func(o *textract.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return NewExtractorWithClient(textract.NewFromConfig(awsCfg, txOpts...), time.Duration(cfg.TimeoutSecs)*time.Second), nil
}

// NewExtractorWithClient builds an Extractor over an existing client
// (used by tests).
func NewExtractorWithClient(client API, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{client: client, timeout: timeout}
}

// Layer identifies this adapter as Layer 1.
func (e *Extractor) Layer() domain.LayerID { return domain.LayerStructuredQuery }

// Extract sends the document with the type's query list to Textract and maps
// query answers onto fields and detected tables onto line items or
// transactions.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error) {
	if len(input.Bytes) == 0 {
		return nil, extract.NewAdapterUnavailable(e.Layer(), errors.New("no document bytes provided"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: input.Bytes},
		FeatureTypes: []types.FeatureType{types.FeatureTypeQueries, types.FeatureTypeTables},
	}
	if len(tc.Queries) > 0 {
		queries := make([]types.Query, 0, len(tc.Queries))
		for _, q := range tc.Queries {
			queries = append(queries, types.Query{
				Text:  aws.String(q.Text),
				Alias: aws.String(q.Alias),
			})
		}
		req.QueriesConfig = &types.QueriesConfig{Queries: queries}
	}

	out, err := e.client.AnalyzeDocument(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, extract.NewAdapterTimeout(e.Layer(), e.timeout, err)
		}
		return nil, extract.NewAdapterUnavailable(e.Layer(), err)
	}

	return MapBlocks(out.Blocks, tc), nil
}
