package session

import (
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"fileflow/internal/config"
	"fileflow/internal/core/port"
	"fileflow/internal/core/service/finalize"

	"github.com/google/uuid"
)

type sessionService struct {
	uow       port.UnitOfWork
	storage   port.ObjectStorage
	finalizer finalize.Guard
	outbox    port.OutboxWriter
	cfg       config.UploadConfig
	bucket    string
	logger    *slog.Logger
}

// NewSessionService creates a new upload session service
func NewSessionService(
	uow port.UnitOfWork,
	storage port.ObjectStorage,
	finalizer finalize.Guard,
	outbox port.OutboxWriter,
	cfg config.UploadConfig,
	bucket string,
	logger *slog.Logger,
) port.SessionService {
	return &sessionService{
		uow:       uow,
		storage:   storage,
		finalizer: finalizer,
		outbox:    outbox,
		cfg:       cfg,
		bucket:    bucket,
		logger:    logger,
	}
}

// finalizeKey is the WAL idempotency key guarding one session's storage finalize
func finalizeKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-finalize:%s", sessionID)
}

func buildStorageKey(purpose string, sessionID uuid.UUID) string {
	if purpose == "" {
		purpose = "misc"
	}
	return fmt.Sprintf("%s/%s", purpose, sessionID)
}

func extractMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeType
}

func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}
