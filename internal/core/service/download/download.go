package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// opDomain tags download operations in the idempotent-operation ledger
const opDomain = "external-download"

type downloadService struct {
	uow        port.UnitOfWork
	guard      port.IdempotencyGuard
	fetcher    port.SourceFetcher
	storage    port.ObjectStorage
	outbox     port.OutboxWriter
	maxRetries int
	logger     *slog.Logger
}

// NewDownloadService creates a new external download service
func NewDownloadService(
	uow port.UnitOfWork,
	guard port.IdempotencyGuard,
	fetcher port.SourceFetcher,
	storage port.ObjectStorage,
	outbox port.OutboxWriter,
	maxRetries int,
	logger *slog.Logger,
) port.DownloadService {
	return &downloadService{
		uow:        uow,
		guard:      guard,
		fetcher:    fetcher,
		storage:    storage,
		outbox:     outbox,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Request registers a download and enqueues it through the outbox. A repeated
// idempotency key replays the original registration instead of creating a
// second download; the bool reports whether that happened.
func (s *downloadService) Request(ctx context.Context, cmd port.RequestDownloadCommand) (*domain.ExternalDownload, bool, error) {
	if cmd.IdempotencyKey == "" {
		return nil, false, fmt.Errorf("idempotency key is required")
	}
	if err := validateSourceURL(cmd.SourceURL); err != nil {
		return nil, false, err
	}

	dl := domain.ExternalDownload{
		ID:             uuid.New(),
		IdempotencyKey: cmd.IdempotencyKey,
		SourceURL:      cmd.SourceURL,
		WebhookURL:     cmd.WebhookURL,
		Status:         domain.DownloadStatusPending,
	}

	op, replayed, err := s.guard.BeginOrReplay(ctx, cmd.IdempotencyKey, dl.ID.String(), opDomain, domain.EventTypeDownloadRequested, s.maxRetries)
	if err != nil {
		return nil, false, fmt.Errorf("could not register download operation: %w", err)
	}
	if replayed {
		existing, findErr := s.uow.DownloadRepo().FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, true, nil
	}

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.DownloadRepo().Insert(ctx, dl); err != nil {
			return err
		}
		return s.outbox.Append(ctx, uow, dl.ID.String(), domain.EventTypeDownloadRequested, domain.DownloadRequestedPayload{
			DownloadID: dl.ID,
			SourceURL:  dl.SourceURL,
		})
	})
	if txErr != nil {
		return nil, false, fmt.Errorf("could not register download: %w", txErr)
	}

	s.logger.Info("external download requested",
		"download_id", dl.ID,
		"op_id", op.ID,
		"source_url", dl.SourceURL,
	)
	return &dl, false, nil
}

// Process executes one download attempt: fetch the source, store the bytes,
// then commit the completed state together with the webhook and result
// messages. It is safe to call again for an already terminal download.
func (s *downloadService) Process(ctx context.Context, downloadID uuid.UUID) error {
	dl, err := s.uow.DownloadRepo().FindByID(ctx, downloadID)
	if err != nil {
		return err
	}
	if dl.Status.IsTerminal() {
		s.logger.Info("download already resolved, skipping", "download_id", dl.ID, "status", dl.Status)
		return nil
	}

	dl.Status = domain.DownloadStatusInProgress
	if err := s.uow.DownloadRepo().Update(ctx, *dl); err != nil {
		return err
	}

	body, contentType, fetchErr := s.fetcher.Fetch(ctx, dl.SourceURL)
	if fetchErr != nil {
		return s.fail(ctx, dl, fmt.Errorf("could not fetch source: %w", fetchErr))
	}

	storageKey := fmt.Sprintf("downloads/%s", dl.ID)
	etag, putErr := s.storage.PutObject(ctx, storageKey, contentType, body)
	if putErr != nil {
		return s.fail(ctx, dl, fmt.Errorf("could not store downloaded object: %w", putErr))
	}

	asset := domain.FileAsset{
		ID:          uuid.New(),
		StorageKey:  storageKey,
		FileName:    fileNameFromURL(dl.SourceURL),
		ContentType: contentType,
		SizeBytes:   int64(len(body)),
		ETag:        etag,
	}

	dl.Status = domain.DownloadStatusCompleted
	dl.FileAssetID = &asset.ID
	dl.ErrorMessage = ""

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.AssetRepo().Insert(ctx, asset); err != nil {
			return err
		}
		if err := uow.DownloadRepo().Update(ctx, *dl); err != nil {
			return err
		}
		if dl.WebhookURL != "" {
			delivery := domain.WebhookDelivery{
				ID:           uuid.New(),
				DownloadID:   dl.ID,
				URL:          dl.WebhookURL,
				Status:       domain.WebhookStatusPending,
				ResultStatus: domain.DownloadStatusCompleted,
				FileAssetID:  &asset.ID,
			}
			if err := uow.WebhookRepo().Insert(ctx, delivery); err != nil {
				return err
			}
		}
		return s.outbox.Append(ctx, uow, dl.ID.String(), domain.EventTypeDownloadCompleted, domain.DownloadResultPayload{
			DownloadID:  dl.ID,
			FileAssetID: &asset.ID,
		})
	})
	if txErr != nil {
		return fmt.Errorf("could not complete download: %w", txErr)
	}

	if op, findErr := s.uow.OperationRepo().FindByIdemKey(ctx, dl.IdempotencyKey); findErr == nil {
		if markErr := s.guard.RecordSuccess(ctx, op.ID); markErr != nil {
			s.logger.Error("failed to close download operation", "download_id", dl.ID, "error", markErr)
		}
	}

	s.logger.Info("external download completed",
		"download_id", dl.ID,
		"file_asset_id", asset.ID,
		"size_bytes", asset.SizeBytes,
	)
	return nil
}

// fail records one failed attempt. Within the retry budget the download goes
// back to pending and the attempt error bubbles up so the consumer redelivers;
// past the budget the download fails terminally and the requester is notified.
func (s *downloadService) fail(ctx context.Context, dl *domain.ExternalDownload, cause error) error {
	dl.AttemptCount++
	dl.ErrorMessage = cause.Error()

	if op, findErr := s.uow.OperationRepo().FindByIdemKey(ctx, dl.IdempotencyKey); findErr == nil {
		if _, markErr := s.guard.RecordFailure(ctx, op.ID, "download_attempt_failed", cause.Error()); markErr != nil {
			s.logger.Error("failed to record download failure", "download_id", dl.ID, "error", markErr)
		}
	}

	if dl.AttemptCount < s.maxRetries {
		dl.Status = domain.DownloadStatusPending
		if err := s.uow.DownloadRepo().Update(ctx, *dl); err != nil {
			return err
		}
		s.logger.Warn("download attempt failed, will retry",
			"download_id", dl.ID,
			"attempt", dl.AttemptCount,
			"error", cause,
		)
		return cause
	}

	dl.Status = domain.DownloadStatusFailed
	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.DownloadRepo().Update(ctx, *dl); err != nil {
			return err
		}
		if dl.WebhookURL != "" {
			delivery := domain.WebhookDelivery{
				ID:           uuid.New(),
				DownloadID:   dl.ID,
				URL:          dl.WebhookURL,
				Status:       domain.WebhookStatusPending,
				ResultStatus: domain.DownloadStatusFailed,
				ErrorMessage: dl.ErrorMessage,
			}
			if err := uow.WebhookRepo().Insert(ctx, delivery); err != nil {
				return err
			}
		}
		return s.outbox.Append(ctx, uow, dl.ID.String(), domain.EventTypeDownloadFailed, domain.DownloadResultPayload{
			DownloadID:   dl.ID,
			ErrorMessage: dl.ErrorMessage,
		})
	})
	if txErr != nil {
		return fmt.Errorf("could not record download failure: %w", txErr)
	}

	s.logger.Error("external download failed terminally",
		"download_id", dl.ID,
		"attempts", dl.AttemptCount,
		"error", cause,
	)
	return fmt.Errorf("%w: %w", domain.ErrRetriesExhausted, cause)
}

func validateSourceURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSourceURL, raw)
	}
	return nil
}

func fileNameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := parsed.Path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
