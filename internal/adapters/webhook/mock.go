package webhook

import (
	"context"

	"fileflow/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockSender is a mock implementation of WebhookSender
type MockSender struct {
	mock.Mock
}

// NewMockSender creates a new MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, url string, payload domain.WebhookPayload) error {
	args := m.Called(ctx, url, payload)
	return args.Error(0)
}
