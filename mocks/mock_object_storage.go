package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldlens/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Fetch(ctx context.Context, bucket, key string) (*port.FetchOutput, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.FetchOutput), args.Error(1)
}
