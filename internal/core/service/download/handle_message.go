package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
)

type downloadEventService struct {
	downloadService port.DownloadService
	logger          *slog.Logger
}

// NewDownloadEventService creates a handler for relayed DownloadRequested messages
func NewDownloadEventService(downloadService port.DownloadService, logger *slog.Logger) port.MessageService {
	return &downloadEventService{
		downloadService: downloadService,
		logger:          logger,
	}
}

// HandleMessage runs one download attempt for a relayed request. Returning an
// error makes the broker redeliver, which is how within-budget retries happen.
func (s *downloadEventService) HandleMessage(ctx context.Context, data []byte) error {
	var payload domain.DownloadRequestedPayload

	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("could not unmarshal download request: %w", err)
	}

	s.logger.Info("handling download request", "download_id", payload.DownloadID)
	return s.downloadService.Process(ctx, payload.DownloadID)
}
