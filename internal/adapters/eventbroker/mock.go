package eventbroker

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of MessagePublisher
type MockPublisher struct {
	mock.Mock
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, payload []byte) bool {
	args := m.Called(ctx, eventType, payload)
	return args.Bool(0)
}
