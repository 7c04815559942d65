package session_test

import (
	"context"
	"errors"
	"testing"

	"fileflow/internal/adapters/repository"
	"fileflow/internal/adapters/storage"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/finalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Abort_MultipartDiscardsProviderUpload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := multipartSession(domain.SessionStatusUploading)

	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockUow.GetSessionRepoMock().
		On("UpdateStatus", ctx, sess.ID, domain.SessionStatusAborted).
		Return(nil)
	mockStorage.On("AbortMultipart", ctx, sess.StorageKey, "upload-123").Return(nil)

	// Act
	err := service.Abort(ctx, sess.ID)

	// Assert
	require.NoError(t, err)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestSessionService_Abort_StorageFailureKeepsSessionInFlight(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := multipartSession(domain.SessionStatusUploading)
	abortErr := errors.New("storage unavailable")

	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockStorage.On("AbortMultipart", ctx, sess.StorageKey, "upload-123").Return(abortErr)

	// Act
	err := service.Abort(ctx, sess.ID)

	// Assert
	assert.ErrorIs(t, err, abortErr)
	// The session must not go terminal until the provider upload is gone,
	// otherwise a retry would skip the abort and orphan it.
	mockUow.GetSessionRepoMock().AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_Abort_TerminalSessionIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := multipartSession(domain.SessionStatusCompleted)
	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)

	// Act
	err := service.Abort(ctx, sess.ID)

	// Assert
	require.NoError(t, err)
	mockUow.GetSessionRepoMock().AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertNotCalled(t, "AbortMultipart", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_Expire_TransitionsNonTerminalSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newService(mockUow, mockStorage, finalize.NewMockGuard())

	sess := multipartSession(domain.SessionStatusInitiated)

	mockUow.GetSessionRepoMock().On("FindByID", ctx, sess.ID).Return(sess, nil)
	mockUow.GetSessionRepoMock().
		On("UpdateStatus", ctx, sess.ID, domain.SessionStatusExpired).
		Return(nil)
	mockStorage.On("AbortMultipart", ctx, sess.StorageKey, "upload-123").Return(nil)

	// Act
	err := service.Expire(ctx, sess.ID)

	// Assert
	require.NoError(t, err)
	assert.True(t, domain.SessionStatusExpired.IsTerminal())
	mockUow.GetSessionRepoMock().AssertExpectations(t)
}
