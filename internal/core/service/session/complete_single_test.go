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

func singleSession(status domain.SessionStatus) *domain.UploadSession {
	return &domain.UploadSession{
		ID:          uuid.New(),
		Kind:        domain.SessionKindSingle,
		Bucket:      testBucket,
		StorageKey:  "avatars/" + uuid.NewString(),
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1000,
		Status:      status,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestSessionService_CompleteSingle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusUploading)

	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockStorage.
		On("HeadObject", ctx, sess.StorageKey).
		Return(&port.ObjectInfo{ETag: "\"etag-1\"", SizeBytes: 1000, ContentType: "image/jpeg"}, nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockUow.GetSessionRepoMock().
		On("UpdateStatus", ctx, sess.ID, domain.SessionStatusCompleted).
		Return(nil)
	mockUow.GetAssetRepoMock().On("Insert", ctx, mock.Anything).Return(nil)
	mockUow.GetOutboxRepoMock().On("Insert", ctx, mock.Anything).Return(nil)

	// Act
	asset, err := service.CompleteSingle(ctx, sess.ID, "etag-1", 1000)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "etag-1", asset.ETag)
	assert.Equal(t, sess.StorageKey, asset.StorageKey)
	assert.Equal(t, sess.SizeBytes, asset.SizeBytes)
	require.NotNil(t, asset.SessionID)
	assert.Equal(t, sess.ID, *asset.SessionID)
	mockUow.AssertExpectations(t)
	mockUow.GetOutboxRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_CompleteSingle_ETagMismatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusUploading)
	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockStorage.
		On("HeadObject", ctx, sess.StorageKey).
		Return(&port.ObjectInfo{ETag: "etag-real", SizeBytes: 1000}, nil)

	// Act
	_, err := service.CompleteSingle(ctx, sess.ID, "etag-claimed", 1000)

	// Assert
	assert.True(t, errors.Is(err, domain.ErrMismatchETag))
}

func TestSessionService_CompleteSingle_SizeMismatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusUploading)
	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockStorage.
		On("HeadObject", ctx, sess.StorageKey).
		Return(&port.ObjectInfo{ETag: "etag-1", SizeBytes: 999}, nil)

	// Act
	_, err := service.CompleteSingle(ctx, sess.ID, "etag-1", 999)

	// Assert
	assert.True(t, errors.Is(err, domain.ErrSizeMismatch))
}

func TestSessionService_CompleteSingle_ObjectNeverArrived(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusUploading)
	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockStorage.
		On("HeadObject", ctx, sess.StorageKey).
		Return((*port.ObjectInfo)(nil), domain.ErrObjectNotFound)

	// Act
	_, err := service.CompleteSingle(ctx, sess.ID, "etag-1", 1000)

	// Assert
	assert.True(t, errors.Is(err, domain.ErrObjectNotFound))
}

func TestSessionService_CompleteSingle_ExpiredSessionIsRejected(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusInitiated)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)

	_, err := service.CompleteSingle(ctx, sess.ID, "etag-1", 1000)

	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	mockStorage.AssertNotCalled(t, "HeadObject", mock.Anything, mock.Anything)
}

func TestSessionService_CompleteSingle_DuplicateCompletionReturnsAsset(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := newService(mockUow, storage.NewMockStorage(), finalize.NewMockGuard())

	sess := singleSession(domain.SessionStatusCompleted)
	original := &domain.FileAsset{
		ID:         uuid.New(),
		SessionID:  &sess.ID,
		StorageKey: sess.StorageKey,
		ETag:       "etag-1",
	}

	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockUow.GetAssetRepoMock().On("FindBySession", ctx, sess.ID).Return(original, nil)

	// Act
	asset, err := service.CompleteSingle(ctx, sess.ID, "etag-1", 1000)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original, asset)
}
