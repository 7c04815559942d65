package upload_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"fileflow/internal/adapters/handlers/http/chi"
	"fileflow/internal/adapters/handlers/http/chi/v1/upload"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecordPartV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newRequest := func(sessionID uuid.UUID, partNumber string, body upload.V1RecordPartRequest) *http.Request {
		jsonBody, _ := json.Marshal(body)
		return httptest.NewRequest(http.MethodPut,
			"/api/v1/upload/multipart/"+sessionID.String()+"/parts/"+partNumber,
			bytes.NewReader(jsonBody))
	}

	t.Run("success - part recorded", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()

		mockService := session.NewMockSessionService()
		mockService.On("RecordPartCompletion", mock.Anything, sessionID, 2, "etag-2", int64(10_000_000)).
			Return(&domain.CompletedPart{SessionID: sessionID, PartNumber: 2, ETag: "etag-2", SizeBytes: 10_000_000}, nil)

		handler := upload.NewUploadHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(sessionID, "2", upload.V1RecordPartRequest{ETag: "etag-2", SizeBytes: 10_000_000}))

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)

		var response upload.V1RecordPartResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		assert.NoError(t, err)
		assert.Equal(t, 2, response.PartNumber)
		assert.Equal(t, "etag-2", response.ETag)

		mockService.AssertExpectations(t)
	})

	t.Run("error - session not found", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()

		mockService := session.NewMockSessionService()
		mockService.On("RecordPartCompletion", mock.Anything, sessionID, 1, "etag-1", int64(0)).
			Return((*domain.CompletedPart)(nil), domain.ErrSessionNotFound)

		handler := upload.NewUploadHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(sessionID, "1", upload.V1RecordPartRequest{ETag: "etag-1"}))

		// Assert
		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("error - conflicting etag for recorded part", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()

		mockService := session.NewMockSessionService()
		mockService.On("RecordPartCompletion", mock.Anything, sessionID, 1, "etag-other", int64(0)).
			Return((*domain.CompletedPart)(nil), domain.ErrDuplicatePart)

		handler := upload.NewUploadHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(sessionID, "1", upload.V1RecordPartRequest{ETag: "etag-other"}))

		// Assert
		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("error - missing etag", func(t *testing.T) {
		// Arrange
		mockService := session.NewMockSessionService()
		handler := upload.NewUploadHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(uuid.New(), "1", upload.V1RecordPartRequest{}))

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "RecordPartCompletion",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - invalid part number", func(t *testing.T) {
		// Arrange
		mockService := session.NewMockSessionService()
		handler := upload.NewUploadHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(uuid.New(), "abc", upload.V1RecordPartRequest{ETag: "etag-1"}))

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
