package session

import (
	"context"
	"fmt"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// Abort transitions the session to aborted and discards any provider-side
// multipart state. Aborting an already-terminal session is a no-op.
func (s *sessionService) Abort(ctx context.Context, sessionID uuid.UUID) error {
	return s.terminate(ctx, sessionID, domain.SessionStatusAborted)
}

// Expire is the time-based one-way transition out of any non-terminal state
func (s *sessionService) Expire(ctx context.Context, sessionID uuid.UUID) error {
	return s.terminate(ctx, sessionID, domain.SessionStatusExpired)
}

func (s *sessionService) terminate(ctx context.Context, sessionID uuid.UUID, target domain.SessionStatus) error {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status.IsTerminal() {
		return nil
	}

	// Provider-side cleanup happens before the local transition. A terminal
	// session is never revisited, so transitioning first would orphan the
	// provider upload whenever the abort fails; this order keeps the session
	// in-flight and a retry (or the expiry sweep) re-attempts the abort,
	// which tolerates an already-discarded upload.
	if sess.Kind == domain.SessionKindMultipart && sess.ProviderUploadID != "" {
		if err := s.storage.AbortMultipart(ctx, sess.StorageKey, sess.ProviderUploadID); err != nil {
			s.logger.Error("failed to abort provider multipart upload",
				"session_id", sess.ID,
				"upload_id", sess.ProviderUploadID,
				"error", err,
			)
			return fmt.Errorf("storage abort failed for session %s: %w", sess.ID, err)
		}
	}

	if err := s.uow.SessionRepo().UpdateStatus(ctx, sess.ID, target); err != nil {
		return err
	}

	s.logger.Info("upload session terminated", "session_id", sess.ID, "status", target)
	return nil
}

// PresignDownload issues a time-limited GET URL for a finalized asset
func (s *sessionService) PresignDownload(ctx context.Context, assetID uuid.UUID) (string, time.Time, error) {
	asset, err := s.uow.AssetRepo().FindByID(ctx, assetID)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.storage.PresignGet(ctx, asset.StorageKey, s.cfg.PresignTTL)
}
