package port

import (
	"context"

	"github.com/google/uuid"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// ExtractInput carries the document handed to an extraction layer.
// Bytes may be empty when the layer only needs the OCR text.
type ExtractInput struct {
	DocumentID  uuid.UUID
	Bytes       []byte
	ContentType string
	Text        string
}

// LayerExtractor is the common contract implemented by all three extraction
// layers. Extract fails with *extract.AdapterUnavailableError when the
// backing service cannot be reached and *extract.AdapterTimeoutError after a
// bounded wait; the local pattern layer never fails.
type LayerExtractor interface {
	Layer() domain.LayerID
	Extract(ctx context.Context, input ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error)
}
