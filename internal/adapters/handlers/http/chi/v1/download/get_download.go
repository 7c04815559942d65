package download

import (
	"encoding/json"
	"errors"
	"net/http"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1GetDownloadResponse is the current state of an external download
type V1GetDownloadResponse struct {
	DownloadID   uuid.UUID  `json:"download_id"`
	SourceURL    string     `json:"source_url"`
	Status       string     `json:"status"`
	FileAssetID  *uuid.UUID `json:"file_asset_id,omitempty"`
	AttemptCount int        `json:"attempt_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

func (h *HandlerV1) GetDownloadV1(w http.ResponseWriter, r *http.Request) {

	downloadID, err := uuid.Parse(chi.URLParam(r, "downloadID"))
	if err != nil {
		http.Error(w, "invalid download id", http.StatusBadRequest)
		return
	}

	dl, err := h.downloadRepo.FindByID(r.Context(), downloadID)
	switch {
	case errors.Is(err, domain.ErrDownloadNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error fetching download", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1GetDownloadResponse{
		DownloadID:   dl.ID,
		SourceURL:    dl.SourceURL,
		Status:       string(dl.Status),
		FileAssetID:  dl.FileAssetID,
		AttemptCount: dl.AttemptCount,
		ErrorMessage: dl.ErrorMessage,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
