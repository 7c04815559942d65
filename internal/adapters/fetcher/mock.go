package fetcher

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of SourceFetcher
type MockFetcher struct {
	mock.Mock
}

// NewMockFetcher creates a new MockFetcher
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	args := m.Called(ctx, url)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
