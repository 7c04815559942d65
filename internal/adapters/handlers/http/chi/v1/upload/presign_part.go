package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1PresignPartResponse carries a presigned URL for one part
type V1PresignPartResponse struct {
	PartNumber int       `json:"part_number"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (h *HandlerV1) PresignPartV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	partNumber, err := strconv.Atoi(chi.URLParam(r, "partNumber"))
	if err != nil {
		http.Error(w, "invalid part number", http.StatusBadRequest)
		return
	}

	uploadURL, expiresAt, err := h.sessionService.IssuePartURL(r.Context(), sessionID, partNumber)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidPartNumber):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrSessionNotUploading), errors.Is(err, domain.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error presigning part", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1PresignPartResponse{
		PartNumber: partNumber,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
