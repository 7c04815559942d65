package storageevent

import (
	"log/slog"

	"fileflow/internal/core/port"
)

type storageEventService struct {
	sessionService port.SessionService
	logger         *slog.Logger
}

// NewStorageEventService creates a handler for bucket notifications
func NewStorageEventService(sessionService port.SessionService, logger *slog.Logger) port.MessageService {
	return &storageEventService{
		sessionService: sessionService,
		logger:         logger,
	}
}
