package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devisflow/internal/domain"
)

// MockPreferenceStore is a mock implementation of port.PreferenceStore.
type MockPreferenceStore struct {
	mock.Mock
}

func (m *MockPreferenceStore) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preferences), args.Error(1)
}

func (m *MockPreferenceStore) Save(ctx context.Context, userID string, prefs domain.Preferences) error {
	args := m.Called(ctx, userID, prefs)
	return args.Error(0)
}
