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

// V1InitSingleRequest is the request to open a single-shot upload session
type V1InitSingleRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Purpose     string `json:"purpose"`
	RequestedBy string `json:"requested_by"`
}

// V1InitSingleResponse is the response to open a single-shot upload session
type V1InitSingleResponse struct {
	SessionID    uuid.UUID `json:"session_id"`
	UploadURL    string    `json:"upload_url"`
	StorageKey   string    `json:"storage_key"`
	URLExpiresAt time.Time `json:"url_expires_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Replayed     bool      `json:"replayed"`
}

func (h *HandlerV1) InitSingleV1(w http.ResponseWriter, r *http.Request) {

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	var req V1InitSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding init single request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.FileName == "" || req.ContentType == "" || req.SizeBytes == 0 {
		http.Error(w, "missing param", http.StatusBadRequest)
		return
	}

	grant, err := h.sessionService.InitSingle(r.Context(), port.InitSingleRequest{
		IdempotencyKey: idemKey,
		FileName:       req.FileName,
		ContentType:    req.ContentType,
		SizeBytes:      req.SizeBytes,
		Purpose:        req.Purpose,
		RequestedBy:    req.RequestedBy,
	})
	switch {
	case errors.Is(err, domain.ErrFileSizeTooBig), errors.Is(err, domain.ErrFileSizeTooSmall):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error opening single upload session", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1InitSingleResponse{
		SessionID:    grant.Session.ID,
		UploadURL:    grant.UploadURL,
		StorageKey:   grant.Session.StorageKey,
		URLExpiresAt: grant.URLExpiresAt,
		ExpiresAt:    grant.Session.ExpiresAt,
		Replayed:     grant.Replayed,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
