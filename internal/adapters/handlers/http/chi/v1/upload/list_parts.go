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

// ListedPart is one provider-confirmed part
type ListedPart struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
	SizeBytes  int64  `json:"size_bytes"`
}

// V1ListPartsResponse lists provider-confirmed parts with a resume marker
type V1ListPartsResponse struct {
	Parts      []ListedPart `json:"parts"`
	NextMarker int          `json:"next_marker"`
}

func (h *HandlerV1) ListPartsV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	maxParts := 1000
	if raw := r.URL.Query().Get("max_parts"); raw != "" {
		maxParts, err = strconv.Atoi(raw)
		if err != nil || maxParts <= 0 {
			http.Error(w, "max_parts must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	marker := 0
	if raw := r.URL.Query().Get("marker"); raw != "" {
		marker, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "marker must be an integer", http.StatusBadRequest)
			return
		}
	}

	parts, nextMarker, err := h.sessionService.ListParts(r.Context(), sessionID, maxParts, marker)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrSessionNotUploading):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error listing parts", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	listed := make([]ListedPart, 0, len(parts))
	for _, part := range parts {
		listed = append(listed, ListedPart{
			PartNumber: part.PartNumber,
			ETag:       part.ETag,
			SizeBytes:  part.SizeBytes,
		})
	}

	resp := V1ListPartsResponse{
		Parts:      listed,
		NextMarker: nextMarker,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
