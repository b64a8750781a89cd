package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devisflow/internal/domain"
	"devisflow/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ProcessBatch(ctx context.Context, req domain.ExtractionRequest, tr service.Tracker) (*domain.BatchResult, error) {
	args := m.Called(ctx, req, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

func (m *MockExtractionService) Summarize(ctx context.Context, req domain.SummaryRequest, tr service.Tracker) (*domain.SummaryResult, error) {
	args := m.Called(ctx, req, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SummaryResult), args.Error(1)
}
