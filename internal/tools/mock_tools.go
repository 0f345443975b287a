package tools

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assistant/internal/domain"
)

// MockQATool is a mock Tool[domain.QAResult].
type MockQATool struct {
	mock.Mock
}

func (m *MockQATool) Run(ctx context.Context, input string) (domain.QAResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.QAResult), args.Error(1)
}

// MockSummaryTool is a mock Tool[domain.SummaryResult].
type MockSummaryTool struct {
	mock.Mock
}

func (m *MockSummaryTool) Run(ctx context.Context, input string) (domain.SummaryResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.SummaryResult), args.Error(1)
}
