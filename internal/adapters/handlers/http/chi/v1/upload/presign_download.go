package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1PresignDownloadResponse carries a presigned GET URL for a stored asset
type V1PresignDownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *HandlerV1) PresignDownloadV1(w http.ResponseWriter, r *http.Request) {

	assetID, err := uuid.Parse(chi.URLParam(r, "assetID"))
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	downloadURL, expiresAt, err := h.sessionService.PresignDownload(r.Context(), assetID)
	switch {
	case errors.Is(err, domain.ErrFileAssetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error presigning download", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1PresignDownloadResponse{
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
