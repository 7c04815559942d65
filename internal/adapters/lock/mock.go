package lock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockLock is a mock implementation of DistributedLock
type MockLock struct {
	mock.Mock
}

// NewMockLock creates a new MockLock
func NewMockLock() *MockLock {
	return &MockLock{}
}

func (m *MockLock) TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	args := m.Called(ctx, key, wait, lease)
	return args.Bool(0), args.Error(1)
}

func (m *MockLock) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLock) IsHeld(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
