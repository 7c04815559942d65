package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// V1InitMultipartRequest is the request to open a multipart upload session
type V1InitMultipartRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Purpose     string `json:"purpose"`
	RequestedBy string `json:"requested_by"`
	PartSize    int64  `json:"part_size,omitempty"`
}

// V1InitMultipartResponse is the response to open a multipart upload session
type V1InitMultipartResponse struct {
	SessionID  uuid.UUID `json:"session_id"`
	UploadID   string    `json:"upload_id"`
	StorageKey string    `json:"storage_key"`
	PartSize   int64     `json:"part_size"`
	TotalParts int       `json:"total_parts"`
	ExpiresAt  time.Time `json:"expires_at"`
	Replayed   bool      `json:"replayed"`
}

func (h *HandlerV1) InitMultipartV1(w http.ResponseWriter, r *http.Request) {

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	var req V1InitMultipartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding init multipart request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.FileName == "" || req.ContentType == "" || req.SizeBytes == 0 {
		http.Error(w, "missing param", http.StatusBadRequest)
		return
	}

	grant, err := h.sessionService.InitMultipart(r.Context(), port.InitMultipartRequest{
		IdempotencyKey: idemKey,
		FileName:       req.FileName,
		ContentType:    req.ContentType,
		SizeBytes:      req.SizeBytes,
		Purpose:        req.Purpose,
		RequestedBy:    req.RequestedBy,
		PartSize:       req.PartSize,
	})
	switch {
	case errors.Is(err, domain.ErrFileSizeTooBig), errors.Is(err, domain.ErrFileSizeTooSmall):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error opening multipart upload session", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1InitMultipartResponse{
		SessionID:  grant.Session.ID,
		UploadID:   grant.UploadID,
		StorageKey: grant.Session.StorageKey,
		PartSize:   grant.PartSize,
		TotalParts: grant.TotalParts,
		ExpiresAt:  grant.Session.ExpiresAt,
		Replayed:   grant.Replayed,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
