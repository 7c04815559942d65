package session

import (
	"context"
	"fmt"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// CompleteMultipart finalizes a multipart session. The storage finalize call
// is non-idempotent, so it runs under the write-ahead-log guard and outside
// any transaction; only the resulting local state transition is transactional.
func (s *sessionService) CompleteMultipart(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error) {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != domain.SessionKindMultipart {
		return nil, fmt.Errorf("%w: not a multipart session", domain.ErrSessionNotUploading)
	}
	if sess.Status == domain.SessionStatusCompleted {
		return s.uow.AssetRepo().FindBySession(ctx, sessionID)
	}
	if !sess.Status.AcceptsUploads() {
		return nil, domain.ErrSessionNotUploading
	}
	if sess.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	parts, err := s.uow.PartRepo().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	set := domain.NewPartSet(sess.TotalParts, parts)
	ordered, err := set.Ordered()
	if err != nil {
		return nil, err
	}
	if len(ordered) != sess.TotalParts {
		return nil, fmt.Errorf("%w: have %d of %d parts", domain.ErrIncompleteParts, len(ordered), sess.TotalParts)
	}

	etag, err := s.finalizer.Run(ctx, sess.ID, finalizeKey(sess.ID), func(ctx context.Context) (string, error) {
		return s.storage.CompleteMultipart(ctx, sess.StorageKey, sess.ProviderUploadID, ordered)
	})
	if err != nil {
		return nil, fmt.Errorf("could not finalize multipart upload: %w", err)
	}

	return s.finishCompletion(ctx, sess, cleanETag(etag))
}
