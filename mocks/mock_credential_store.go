package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devisflow/internal/domain"
)

// MockCredentialStore is a mock implementation of port.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) APIKey(ctx context.Context, userID string, provider domain.ProviderID) (string, error) {
	args := m.Called(ctx, userID, provider)
	return args.String(0), args.Error(1)
}
