package download_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"fileflow/internal/adapters/handlers/http/chi"
	downloadhandler "fileflow/internal/adapters/handlers/http/chi/v1/download"
	"fileflow/internal/adapters/repository"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/download"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetDownloadV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success - download found", func(t *testing.T) {
		// Arrange
		assetID := uuid.New()
		dl := &domain.ExternalDownload{
			ID:           uuid.New(),
			SourceURL:    "https://cdn.example.com/reports/q3.pdf",
			Status:       domain.DownloadStatusCompleted,
			FileAssetID:  &assetID,
			AttemptCount: 1,
		}

		mockRepo := repository.NewMockExternalDownloadRepository()
		mockRepo.On("FindByID", mock.Anything, dl.ID).Return(dl, nil)

		handler := downloadhandler.NewDownloadHandlerV1(download.NewMockDownloadService(), mockRepo, discardLogger)
		h := chi.NewRouter(discardLogger, nil, handler, "")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/"+dl.ID.String(), nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)

		var response downloadhandler.V1GetDownloadResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		assert.NoError(t, err)
		assert.Equal(t, dl.ID, response.DownloadID)
		assert.Equal(t, "completed", response.Status)
		assert.Equal(t, &assetID, response.FileAssetID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("error - download not found", func(t *testing.T) {
		// Arrange
		downloadID := uuid.New()

		mockRepo := repository.NewMockExternalDownloadRepository()
		mockRepo.On("FindByID", mock.Anything, downloadID).
			Return((*domain.ExternalDownload)(nil), domain.ErrDownloadNotFound)

		handler := downloadhandler.NewDownloadHandlerV1(download.NewMockDownloadService(), mockRepo, discardLogger)
		h := chi.NewRouter(discardLogger, nil, handler, "")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/"+downloadID.String(), nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - invalid download id", func(t *testing.T) {
		// Arrange
		mockRepo := repository.NewMockExternalDownloadRepository()
		handler := downloadhandler.NewDownloadHandlerV1(download.NewMockDownloadService(), mockRepo, discardLogger)
		h := chi.NewRouter(discardLogger, nil, handler, "")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/not-a-uuid", nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
