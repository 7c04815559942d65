package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fileflow/internal/adapters/repository"
	"fileflow/internal/adapters/storage"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
	"fileflow/internal/core/service/finalize"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionService_InitMultipart_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sizeBytes := int64(25 * 1024 * 1024)

	mockStorage.
		On("InitiateMultipart", ctx, mock.Anything, "video/mp4").
		Return("upload-123", nil)
	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(nil)

	// Act
	grant, err := service.InitMultipart(ctx, port.InitMultipartRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      sizeBytes,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "upload-123", grant.UploadID)
	assert.Equal(t, defaultCfg.DefaultPartSize, grant.PartSize)
	assert.Equal(t, 3, grant.TotalParts)
	assert.False(t, grant.Replayed)
	assert.Equal(t, domain.SessionKindMultipart, grant.Session.Kind)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_InitMultipart_SizeBelowMultipartThreshold(t *testing.T) {
	ctx := context.Background()
	service := newService(repository.NewMockUnitOfWork(), storage.NewMockStorage(), finalize.NewMockGuard())

	_, err := service.InitMultipart(ctx, port.InitMultipartRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      defaultCfg.SingleUploadMaxSize,
	})

	assert.True(t, errors.Is(err, domain.ErrFileSizeTooSmall))
}

func TestSessionService_InitMultipart_CreateFailureDiscardsProviderUpload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	createErr := errors.New("connection reset")

	mockStorage.
		On("InitiateMultipart", ctx, mock.Anything, "video/mp4").
		Return("upload-orphan", nil)
	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(createErr)
	mockStorage.
		On("AbortMultipart", ctx, mock.Anything, "upload-orphan").
		Return(nil)

	// Act
	_, err := service.InitMultipart(ctx, port.InitMultipartRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      25 * 1024 * 1024,
	})

	// Assert
	assert.ErrorIs(t, err, createErr)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_InitMultipart_DuplicateKeyAbortsOrphanAndReplays(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	existing := &domain.UploadSession{
		ID:               uuid.New(),
		Kind:             domain.SessionKindMultipart,
		ProviderUploadID: "upload-original",
		PartSize:         defaultCfg.DefaultPartSize,
		TotalParts:       3,
		Status:           domain.SessionStatusUploading,
		ExpiresAt:        time.Now().Add(time.Hour),
	}

	mockStorage.
		On("InitiateMultipart", ctx, mock.Anything, "video/mp4").
		Return("upload-orphan", nil)
	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(domain.ErrAlreadyExists)
	mockStorage.
		On("AbortMultipart", ctx, mock.Anything, "upload-orphan").
		Return(nil)
	mockUow.GetSessionRepoMock().
		On("FindByIdempotencyKey", ctx, "idem-1").
		Return(existing, nil)

	// Act
	grant, err := service.InitMultipart(ctx, port.InitMultipartRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      25 * 1024 * 1024,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, grant.Replayed)
	assert.Equal(t, "upload-original", grant.UploadID)
	assert.Equal(t, existing.ID, grant.Session.ID)
	mockStorage.AssertExpectations(t)
}
