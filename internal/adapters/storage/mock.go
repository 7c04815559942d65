package storage

import (
	"context"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockStorage) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, uploadID, partNumber, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockStorage) InitiateMultipart(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CompleteMultipart(ctx context.Context, key, uploadID string, parts []domain.CompletedPart) (string, error) {
	args := m.Called(ctx, key, uploadID, parts)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) AbortMultipart(ctx context.Context, key, uploadID string) error {
	args := m.Called(ctx, key, uploadID)
	return args.Error(0)
}

func (m *MockStorage) ListParts(ctx context.Context, key, uploadID string, maxParts, partNumberMarker int) ([]domain.CompletedPart, int, error) {
	args := m.Called(ctx, key, uploadID, maxParts, partNumberMarker)
	return args.Get(0).([]domain.CompletedPart), args.Int(1), args.Error(2)
}

func (m *MockStorage) HeadObject(ctx context.Context, key string) (*port.ObjectInfo, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(*port.ObjectInfo), args.Error(1)
}

func (m *MockStorage) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
