package assistant

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assistant/internal/domain"
)

// MockRouter is a mock implementation of Router using testify/mock.
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, query string) (domain.RouteDecision, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.RouteDecision), args.Error(1)
}
