package download

import (
	"log/slog"

	"fileflow/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 external download routes
type HandlerV1 struct {
	downloadService port.DownloadService
	downloadRepo    port.ExternalDownloadRepository
	logger          *slog.Logger
}

// NewDownloadHandlerV1 creates HandlerV1
func NewDownloadHandlerV1(service port.DownloadService, repo port.ExternalDownloadRepository, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		downloadService: service,
		downloadRepo:    repo,
		logger:          logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.RequestDownloadV1)
	router.Get("/{downloadID}", h.GetDownloadV1)

	return router
}
