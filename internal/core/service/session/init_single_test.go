package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fileflow/internal/adapters/repository"
	"fileflow/internal/adapters/storage"
	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
	"fileflow/internal/core/service/finalize"
	"fileflow/internal/core/service/outbox"
	"fileflow/internal/core/service/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var defaultCfg = config.UploadConfig{
	SingleUploadMaxSize: 10 * 1024 * 1024,
	MultipartMaxSize:    5 * 1024 * 1024 * 1024,
	DefaultPartSize:     10 * 1024 * 1024,
	SessionTTL:          30 * time.Minute,
	PresignTTL:          15 * time.Minute,
	FinalizeGrace:       5 * time.Minute,
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testBucket = "fileflow"

func newService(uow port.UnitOfWork, st port.ObjectStorage, guard finalize.Guard) port.SessionService {
	return session.NewSessionService(uow, st, guard, outbox.NewWriter(), defaultCfg, testBucket, testLogger)
}

func TestSessionService_InitSingle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	urlExpiresAt := time.Now().Add(defaultCfg.PresignTTL)

	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(nil)
	mockStorage.
		On("PresignPut", ctx, mock.Anything, "video/mp4", defaultCfg.PresignTTL).
		Return("https://minio.example.com/put", urlExpiresAt, nil)

	// Act
	grant, err := service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      1000,
		Purpose:        "avatars",
		RequestedBy:    "user-service",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://minio.example.com/put", grant.UploadURL)
	assert.False(t, grant.Replayed)
	assert.Equal(t, domain.SessionKindSingle, grant.Session.Kind)
	assert.Equal(t, domain.SessionStatusInitiated, grant.Session.Status)
	assert.Equal(t, testBucket, grant.Session.Bucket)
	assert.Contains(t, grant.Session.StorageKey, "avatars/")
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_InitSingle_MissingIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	service := newService(repository.NewMockUnitOfWork(), storage.NewMockStorage(), finalize.NewMockGuard())

	_, err := service.InitSingle(ctx, port.InitSingleRequest{
		FileName:    "video.mp4",
		ContentType: "video/mp4",
		SizeBytes:   1000,
	})

	require.Error(t, err)
}

func TestSessionService_InitSingle_SizeOutOfBounds(t *testing.T) {
	ctx := context.Background()
	service := newService(repository.NewMockUnitOfWork(), storage.NewMockStorage(), finalize.NewMockGuard())

	_, err := service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      defaultCfg.SingleUploadMaxSize + 1,
	})
	assert.True(t, errors.Is(err, domain.ErrFileSizeTooBig))

	_, err = service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-2",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      0,
	})
	assert.True(t, errors.Is(err, domain.ErrFileSizeTooSmall))
}

func TestSessionService_InitSingle_ReplaysDuplicateKey(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	existing := &domain.UploadSession{
		ID:             uuid.New(),
		IdempotencyKey: "idem-1",
		Kind:           domain.SessionKindSingle,
		Bucket:         testBucket,
		StorageKey:     "avatars/" + uuid.NewString(),
		ContentType:    "video/mp4",
		SizeBytes:      1000,
		Status:         domain.SessionStatusInitiated,
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	urlExpiresAt := time.Now().Add(defaultCfg.PresignTTL)

	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(domain.ErrAlreadyExists)
	mockUow.GetSessionRepoMock().
		On("FindByIdempotencyKey", ctx, "idem-1").
		Return(existing, nil)
	mockStorage.
		On("PresignPut", ctx, existing.StorageKey, existing.ContentType, defaultCfg.PresignTTL).
		Return("https://minio.example.com/put", urlExpiresAt, nil)

	// Act
	grant, err := service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      1000,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, grant.Replayed)
	assert.Equal(t, existing.ID, grant.Session.ID)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_InitSingle_DuplicateKeyExpiredSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := newService(mockUow, storage.NewMockStorage(), finalize.NewMockGuard())

	existing := &domain.UploadSession{
		ID:        uuid.New(),
		Kind:      domain.SessionKindSingle,
		Status:    domain.SessionStatusExpired,
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(domain.ErrAlreadyExists)
	mockUow.GetSessionRepoMock().
		On("FindByIdempotencyKey", ctx, "idem-1").
		Return(existing, nil)

	// Act
	_, err := service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      1000,
	})

	// Assert
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdempotencyKey))
}

func TestSessionService_InitSingle_DuplicateKeyWrongKind(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := newService(mockUow, storage.NewMockStorage(), finalize.NewMockGuard())

	existing := &domain.UploadSession{
		ID:        uuid.New(),
		Kind:      domain.SessionKindMultipart,
		Status:    domain.SessionStatusUploading,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	mockUow.GetSessionRepoMock().
		On("Create", ctx, mock.Anything).
		Return(domain.ErrAlreadyExists)
	mockUow.GetSessionRepoMock().
		On("FindByIdempotencyKey", ctx, "idem-1").
		Return(existing, nil)

	// Act
	_, err := service.InitSingle(ctx, port.InitSingleRequest{
		IdempotencyKey: "idem-1",
		FileName:       "video.mp4",
		ContentType:    "video/mp4",
		SizeBytes:      1000,
	})

	// Assert
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdempotencyKey))
}
