package session

import (
	"context"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

// NewMockSessionService creates a new MockSessionService
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

func (m *MockSessionService) InitSingle(ctx context.Context, req port.InitSingleRequest) (*port.SingleUploadGrant, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*port.SingleUploadGrant), args.Error(1)
}

func (m *MockSessionService) InitMultipart(ctx context.Context, req port.InitMultipartRequest) (*port.MultipartUploadGrant, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*port.MultipartUploadGrant), args.Error(1)
}

func (m *MockSessionService) IssuePartURL(ctx context.Context, sessionID uuid.UUID, partNumber int) (string, time.Time, error) {
	args := m.Called(ctx, sessionID, partNumber)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSessionService) RecordPartCompletion(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error) {
	args := m.Called(ctx, sessionID, partNumber, etag, sizeBytes)
	return args.Get(0).(*domain.CompletedPart), args.Error(1)
}

func (m *MockSessionService) ListParts(ctx context.Context, sessionID uuid.UUID, maxParts int, partNumberMarker int) ([]domain.CompletedPart, int, error) {
	args := m.Called(ctx, sessionID, maxParts, partNumberMarker)
	return args.Get(0).([]domain.CompletedPart), args.Int(1), args.Error(2)
}

func (m *MockSessionService) CompleteSingle(ctx context.Context, sessionID uuid.UUID, clientETag string, clientSize int64) (*domain.FileAsset, error) {
	args := m.Called(ctx, sessionID, clientETag, clientSize)
	return args.Get(0).(*domain.FileAsset), args.Error(1)
}

func (m *MockSessionService) CompleteMultipart(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(*domain.FileAsset), args.Error(1)
}

func (m *MockSessionService) Abort(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) Expire(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) PresignDownload(ctx context.Context, assetID uuid.UUID) (string, time.Time, error) {
	args := m.Called(ctx, assetID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
