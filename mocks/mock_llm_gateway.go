package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devisflow/internal/domain"
)

// MockLLMGateway is a mock implementation of port.LLMGateway.
type MockLLMGateway struct {
	mock.Mock
}

func (m *MockLLMGateway) Invoke(ctx context.Context, provider domain.ProviderID, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error) {
	args := m.Called(ctx, provider, messages, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Completion), args.Error(1)
}

func (m *MockLLMGateway) RequiresKey(provider domain.ProviderID) (bool, error) {
	args := m.Called(provider)
	return args.Bool(0), args.Error(1)
}
