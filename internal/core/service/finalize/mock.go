package finalize

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGuard is a mock implementation of Guard
type MockGuard struct {
	mock.Mock
}

// NewMockGuard creates a new MockGuard
func NewMockGuard() *MockGuard {
	return &MockGuard{}
}

func (m *MockGuard) Run(ctx context.Context, opID uuid.UUID, idemKey string, call func(ctx context.Context) (string, error)) (string, error) {
	args := m.Called(ctx, opID, idemKey, call)
	return args.String(0), args.Error(1)
}
