package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1RecordPartRequest reports one uploaded part
type V1RecordPartRequest struct {
	ETag      string `json:"etag"`
	SizeBytes int64  `json:"size_bytes"`
}

// V1RecordPartResponse echoes the recorded part
type V1RecordPartResponse struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (h *HandlerV1) RecordPartV1(w http.ResponseWriter, r *http.Request) {

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

	var req V1RecordPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding record part request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ETag == "" {
		http.Error(w, "missing etag", http.StatusBadRequest)
		return
	}

	part, err := h.sessionService.RecordPartCompletion(r.Context(), sessionID, partNumber, req.ETag, req.SizeBytes)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidPartNumber):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrDuplicatePart), errors.Is(err, domain.ErrSessionNotUploading), errors.Is(err, domain.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error recording part", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1RecordPartResponse{
		PartNumber: part.PartNumber,
		ETag:       part.ETag,
		SizeBytes:  part.SizeBytes,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
