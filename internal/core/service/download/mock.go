package download

import (
	"context"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDownloadService is a mock implementation of DownloadService
type MockDownloadService struct {
	mock.Mock
}

// NewMockDownloadService creates a new MockDownloadService
func NewMockDownloadService() *MockDownloadService {
	return &MockDownloadService{}
}

func (m *MockDownloadService) Request(ctx context.Context, cmd port.RequestDownloadCommand) (*domain.ExternalDownload, bool, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(*domain.ExternalDownload), args.Bool(1), args.Error(2)
}

func (m *MockDownloadService) Process(ctx context.Context, downloadID uuid.UUID) error {
	args := m.Called(ctx, downloadID)
	return args.Error(0)
}
