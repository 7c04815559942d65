package upload

import (
	"errors"
	"net/http"

	"fileflow/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *HandlerV1) CompleteMultipartV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	asset, err := h.sessionService.CompleteMultipart(r.Context(), sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrIncompleteParts), errors.Is(err, domain.ErrInvalidPartNumber), errors.Is(err, domain.ErrDuplicatePart):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, domain.ErrFinalizeInFlight):
		// Another caller is completing this session right now.
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, domain.ErrSessionNotUploading), errors.Is(err, domain.ErrSessionExpired):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("error completing multipart upload", "error", err)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	}

	writeCompleteResponse(w, h, asset)
}
