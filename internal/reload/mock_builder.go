package reload

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockBuilder is a mock implementation of Builder using testify/mock.
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) LoadOrBuild(ctx context.Context, force bool) error {
	args := m.Called(ctx, force)
	return args.Error(0)
}

func (m *MockBuilder) SharedStore() bool {
	args := m.Called()
	return args.Bool(0)
}
