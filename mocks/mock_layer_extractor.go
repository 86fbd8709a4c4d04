package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldlens/internal/domain"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

// MockLayerExtractor is a mock implementation of port.LayerExtractor.
type MockLayerExtractor struct {
	mock.Mock

	LayerName domain.LayerID
}

func (m *MockLayerExtractor) Layer() domain.LayerID {
	return m.LayerName
}

func (m *MockLayerExtractor) Extract(ctx context.Context, input port.ExtractInput, tc *typeconfig.DocumentTypeConfig) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, input, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}
