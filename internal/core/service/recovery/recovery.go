package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// finalizeKeyPrefix matches the WAL keys the session service writes
const finalizeKeyPrefix = "session-finalize:"

type recoveryService struct {
	uow        port.UnitOfWork
	sessionSvc port.SessionService
	storage    port.ObjectStorage
	outbox     port.OutboxWriter
	cfg        config.RecoveryConfig
	logger     *slog.Logger
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(
	uow port.UnitOfWork,
	sessionSvc port.SessionService,
	storage port.ObjectStorage,
	outbox port.OutboxWriter,
	cfg config.RecoveryConfig,
	logger *slog.Logger,
) port.RecoveryService {
	return &recoveryService{
		uow:        uow,
		sessionSvc: sessionSvc,
		storage:    storage,
		outbox:     outbox,
		cfg:        cfg,
		logger:     logger,
	}
}

// ExpireStaleSessions expires every non-terminal session past its deadline.
// Each session goes through the regular expire transition so provider-side
// multipart uploads are aborted the same way a client abort would.
func (r *recoveryService) ExpireStaleSessions(ctx context.Context, now time.Time) (port.RecoveryResult, error) {
	var result port.RecoveryResult

	sessions, err := r.uow.SessionRepo().FindExpired(ctx, now, r.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	for _, sess := range sessions {
		result.Total++
		if expireErr := r.sessionSvc.Expire(ctx, sess.ID); expireErr != nil {
			result.Failed++
			r.logger.Error("failed to expire session", "session_id", sess.ID, "error", expireErr)
			continue
		}
		result.Succeeded++
	}

	if result.Total > 0 {
		r.logger.Info("expired stale sessions",
			"total", result.Total,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// RecoverStuckDownloads re-enqueues downloads whose worker died mid-attempt.
// A stuck download still inside its retry budget goes back through the outbox;
// one past the budget fails terminally and the requester gets the webhook it
// was promised.
func (r *recoveryService) RecoverStuckDownloads(ctx context.Context, staleBefore time.Time) (port.RecoveryResult, error) {
	var result port.RecoveryResult

	downloads, err := r.uow.DownloadRepo().FindStuck(ctx, staleBefore, r.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	for _, dl := range downloads {
		result.Total++
		if recoverErr := r.recoverDownload(ctx, dl); recoverErr != nil {
			result.Failed++
			r.logger.Error("failed to recover download", "download_id", dl.ID, "error", recoverErr)
			continue
		}
		result.Succeeded++
	}

	if result.Total > 0 {
		r.logger.Info("recovered stuck downloads",
			"total", result.Total,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (r *recoveryService) recoverDownload(ctx context.Context, dl domain.ExternalDownload) error {
	if dl.AttemptCount >= r.cfg.DownloadMaxRetries {
		dl.Status = domain.DownloadStatusFailed
		if dl.ErrorMessage == "" {
			dl.ErrorMessage = "download abandoned after worker interruption"
		}
		return r.uow.Execute(ctx, func(uow port.UnitOfWork) error {
			if err := uow.DownloadRepo().Update(ctx, dl); err != nil {
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
			return r.outbox.Append(ctx, uow, dl.ID.String(), domain.EventTypeDownloadFailed, domain.DownloadResultPayload{
				DownloadID:   dl.ID,
				ErrorMessage: dl.ErrorMessage,
			})
		})
	}

	// Back to pending plus a fresh outbox message, so the regular consumer
	// picks it up again instead of this sweep executing the attempt inline.
	dl.Status = domain.DownloadStatusPending
	dl.AttemptCount++
	return r.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.DownloadRepo().Update(ctx, dl); err != nil {
			return err
		}
		return r.outbox.Append(ctx, uow, dl.ID.String(), domain.EventTypeDownloadRequested, domain.DownloadRequestedPayload{
			DownloadID: dl.ID,
			SourceURL:  dl.SourceURL,
		})
	})
}

// RequeueStaleOutbox resets processing messages whose dispatcher died before
// recording an outcome
func (r *recoveryService) RequeueStaleOutbox(ctx context.Context, staleBefore time.Time) (int, error) {
	requeued, err := r.uow.OutboxRepo().RequeueStale(ctx, staleBefore, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if requeued > 0 {
		r.logger.Info("requeued stale outbox messages", "count", requeued)
	}
	return requeued, nil
}

// RequeueStaleWebhooks resets webhook deliveries whose dispatcher died after
// claiming them
func (r *recoveryService) RequeueStaleWebhooks(ctx context.Context, staleBefore time.Time) (int, error) {
	requeued, err := r.uow.WebhookRepo().RequeueStale(ctx, staleBefore, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if requeued > 0 {
		r.logger.Info("requeued stale webhook deliveries", "count", requeued)
	}
	return requeued, nil
}

// ResolvePendingFinalizes reconciles interrupted storage finalize calls. The
// log entry alone cannot say whether the call landed, so storage is the
// arbiter: a present object means the call succeeded and only the local
// transition is missing, an absent one means the call is safe to retry.
func (r *recoveryService) ResolvePendingFinalizes(ctx context.Context, createdBefore time.Time) (port.RecoveryResult, error) {
	var result port.RecoveryResult

	entries, err := r.uow.FinalizeLogRepo().FindStalePending(ctx, createdBefore, r.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		result.Total++
		if resolveErr := r.resolveFinalize(ctx, entry); resolveErr != nil {
			result.Failed++
			r.logger.Error("failed to resolve pending finalize",
				"entry_id", entry.ID,
				"idem_key", entry.IdemKey,
				"error", resolveErr,
			)
			continue
		}
		result.Succeeded++
	}

	if result.Total > 0 {
		r.logger.Info("resolved pending finalizes",
			"total", result.Total,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (r *recoveryService) resolveFinalize(ctx context.Context, entry domain.FinalizeLog) error {
	sessionID, err := sessionIDFromFinalizeKey(entry.IdemKey)
	if err != nil {
		return err
	}

	sess, err := r.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return err
	}

	info, headErr := r.storage.HeadObject(ctx, sess.StorageKey)
	switch {
	case headErr == nil:
		// The interrupted call reached storage. Close the entry with the
		// verified etag so the re-driven completion replays it from the log.
		if markErr := r.uow.FinalizeLogRepo().Complete(ctx, entry.ID, domain.FinalizeOutcomeVerified, strings.Trim(info.ETag, "\"")); markErr != nil {
			return markErr
		}
	case errors.Is(headErr, domain.ErrObjectNotFound):
		// The call never took effect, so re-running it is safe.
		if markErr := r.uow.FinalizeLogRepo().Complete(ctx, entry.ID, domain.FinalizeOutcomeUnverified, "object absent after interrupted finalize"); markErr != nil {
			return markErr
		}
	default:
		return fmt.Errorf("could not verify object for interrupted finalize: %w", headErr)
	}

	if _, completeErr := r.sessionSvc.CompleteMultipart(ctx, sessionID); completeErr != nil {
		return fmt.Errorf("could not re-drive completion: %w", completeErr)
	}

	r.logger.Info("reconciled interrupted finalize", "session_id", sessionID, "entry_id", entry.ID)
	return nil
}

func sessionIDFromFinalizeKey(idemKey string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(idemKey, finalizeKeyPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("unrecognized finalize key %q", idemKey)
	}
	return uuid.Parse(raw)
}
