package index

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIndex is a mock implementation of Index using testify/mock.
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]Fragment, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Fragment), args.Error(1)
}
