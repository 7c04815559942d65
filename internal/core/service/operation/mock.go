package operation

import (
	"context"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdempotencyGuard is a mock implementation of IdempotencyGuard
type MockIdempotencyGuard struct {
	mock.Mock
}

// NewMockIdempotencyGuard creates a new MockIdempotencyGuard
func NewMockIdempotencyGuard() *MockIdempotencyGuard {
	return &MockIdempotencyGuard{}
}

func (m *MockIdempotencyGuard) BeginOrReplay(ctx context.Context, idemKey, bizKey, opDomain, eventType string, maxAttempts int) (*domain.Operation, bool, error) {
	args := m.Called(ctx, idemKey, bizKey, opDomain, eventType, maxAttempts)
	return args.Get(0).(*domain.Operation), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyGuard) RecordSuccess(ctx context.Context, opID uuid.UUID) error {
	args := m.Called(ctx, opID)
	return args.Error(0)
}

func (m *MockIdempotencyGuard) RecordFailure(ctx context.Context, opID uuid.UUID, errorCode, errorMessage string) (*domain.Operation, error) {
	args := m.Called(ctx, opID, errorCode, errorMessage)
	return args.Get(0).(*domain.Operation), args.Error(1)
}
