package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1CompleteSingleRequest reports the client-observed upload result
type V1CompleteSingleRequest struct {
	ETag      string `json:"etag"`
	SizeBytes int64  `json:"size_bytes"`
}

// V1CompleteResponse is the finalized asset of a completed session
type V1CompleteResponse struct {
	FileAssetID uuid.UUID `json:"file_asset_id"`
	StorageKey  string    `json:"storage_key"`
	ETag        string    `json:"etag"`
	SizeBytes   int64     `json:"size_bytes"`
}

func (h *HandlerV1) CompleteSingleV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	var req V1CompleteSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding complete single request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ETag == "" {
		http.Error(w, "missing etag", http.StatusBadRequest)
		return
	}

	asset, err := h.sessionService.CompleteSingle(r.Context(), sessionID, req.ETag, req.SizeBytes)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrObjectNotFound), errors.Is(err, domain.ErrMismatchETag), errors.Is(err, domain.ErrSizeMismatch):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, domain.ErrSessionNotUploading), errors.Is(err, domain.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error completing single upload", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	writeCompleteResponse(w, h, asset)
}

func writeCompleteResponse(w http.ResponseWriter, h *HandlerV1, asset *domain.FileAsset) {
	resp := V1CompleteResponse{
		FileAssetID: asset.ID,
		StorageKey:  asset.StorageKey,
		ETag:        asset.ETag,
		SizeBytes:   asset.SizeBytes,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
