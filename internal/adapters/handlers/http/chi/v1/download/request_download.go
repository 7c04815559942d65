package download

import (
	"encoding/json"
	"errors"
	"net/http"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// V1RequestDownloadRequest asks the server to ingest a remote file
type V1RequestDownloadRequest struct {
	SourceURL  string `json:"source_url"`
	WebhookURL string `json:"webhook_url"`
}

// V1RequestDownloadResponse acknowledges the registered download
type V1RequestDownloadResponse struct {
	DownloadID uuid.UUID `json:"download_id"`
	Status     string    `json:"status"`
	Replayed   bool      `json:"replayed"`
}

func (h *HandlerV1) RequestDownloadV1(w http.ResponseWriter, r *http.Request) {

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	var req V1RequestDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding download request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.SourceURL == "" {
		http.Error(w, "missing source_url", http.StatusBadRequest)
		return
	}

	dl, replayed, err := h.downloadService.Request(r.Context(), port.RequestDownloadCommand{
		IdempotencyKey: idemKey,
		SourceURL:      req.SourceURL,
		WebhookURL:     req.WebhookURL,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidSourceURL):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("error registering download", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	resp := V1RequestDownloadResponse{
		DownloadID: dl.ID,
		Status:     string(dl.Status),
		Replayed:   replayed,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
