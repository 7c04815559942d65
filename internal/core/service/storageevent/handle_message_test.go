package storageevent_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/session"
	"fileflow/internal/core/service/storageevent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func bucketEventJSON(eventName, objectKey, etag string, size int64) []byte {
	return []byte(fmt.Sprintf(`{
		"EventName": %q,
		"Key": %q,
		"Records": [{
			"eventName": %q,
			"s3": {
				"bucket": {"name": "fileflow"},
				"object": {"key": %q, "size": %d, "eTag": %q}
			},
			"eventTime": "2026-08-29T10:00:00.000Z"
		}]
	}`, eventName, objectKey, eventName, objectKey, size, etag))
}

func TestStorageEventService_HandleMessage_ObjectPutCompletesSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockSessions := session.NewMockSessionService()
	handler := storageevent.NewStorageEventService(mockSessions, testLogger)

	sessionID := uuid.New()
	escapedKey := "avatars%2F" + sessionID.String()
	data := bucketEventJSON("s3:ObjectCreated:Put", escapedKey, "etag-1", 1000)

	mockSessions.
		On("CompleteSingle", ctx, sessionID, "etag-1", int64(1000)).
		Return(&domain.FileAsset{ID: uuid.New()}, nil)

	// Act
	err := handler.HandleMessage(ctx, data)

	// Assert
	require.NoError(t, err)
	mockSessions.AssertExpectations(t)
}

func TestStorageEventService_HandleMessage_UnknownSessionIsSkipped(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockSessions := session.NewMockSessionService()
	handler := storageevent.NewStorageEventService(mockSessions, testLogger)

	objectID := uuid.New()
	data := bucketEventJSON("s3:ObjectCreated:Put", "downloads/"+objectID.String(), "etag-1", 1000)

	mockSessions.
		On("CompleteSingle", ctx, objectID, "etag-1", int64(1000)).
		Return((*domain.FileAsset)(nil), domain.ErrSessionNotFound)

	// Act
	err := handler.HandleMessage(ctx, data)

	// Assert
	require.NoError(t, err)
}

func TestStorageEventService_HandleMessage_MultipartCompletionIsIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockSessions := session.NewMockSessionService()
	handler := storageevent.NewStorageEventService(mockSessions, testLogger)

	data := bucketEventJSON("s3:ObjectCreated:CompleteMultipartUpload", "avatars/"+uuid.NewString(), "etag-1", 50_000_000)

	// Act
	err := handler.HandleMessage(ctx, data)

	// Assert
	require.NoError(t, err)
	mockSessions.AssertNotCalled(t, "CompleteSingle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageEventService_HandleMessage_UnknownEventIsIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockSessions := session.NewMockSessionService()
	handler := storageevent.NewStorageEventService(mockSessions, testLogger)

	data := bucketEventJSON("s3:ObjectRemoved:Delete", "avatars/"+uuid.NewString(), "", 0)

	// Act
	err := handler.HandleMessage(ctx, data)

	// Assert
	require.NoError(t, err)
	mockSessions.AssertNotCalled(t, "CompleteSingle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageEventService_HandleMessage_InvalidPayload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	handler := storageevent.NewStorageEventService(session.NewMockSessionService(), testLogger)

	// Act
	err := handler.HandleMessage(ctx, []byte("not-json"))

	// Assert
	require.Error(t, err)
}

func TestStorageEventService_HandleMessage_NoRecords(t *testing.T) {
	// Arrange
	ctx := context.Background()
	handler := storageevent.NewStorageEventService(session.NewMockSessionService(), testLogger)

	// Act
	err := handler.HandleMessage(ctx, []byte(`{"EventName": "s3:ObjectCreated:Put", "Records": []}`))

	// Assert
	require.Error(t, err)
}
