package upload

import (
	"log/slog"

	"fileflow/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 upload session routes
type HandlerV1 struct {
	sessionService port.SessionService
	logger         *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(service port.SessionService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		sessionService: service,
		logger:         logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.InitSingleV1)
	router.Post("/multipart", h.InitMultipartV1)
	router.Post("/multipart/{sessionID}/parts/{partNumber}", h.PresignPartV1)
	router.Put("/multipart/{sessionID}/parts/{partNumber}", h.RecordPartV1)
	router.Get("/multipart/{sessionID}/parts", h.ListPartsV1)
	router.Post("/multipart/{sessionID}/complete", h.CompleteMultipartV1)
	router.Post("/{sessionID}/complete", h.CompleteSingleV1)
	router.Delete("/{sessionID}", h.AbortV1)
	router.Get("/asset/{assetID}/url", h.PresignDownloadV1)

	return router
}
