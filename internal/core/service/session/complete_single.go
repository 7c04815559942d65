package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// CompleteSingle verifies the object actually landed in storage with the
// etag and size the client claims, then transitions the session to completed
// and writes the downstream outbox message in the same transaction.
func (s *sessionService) CompleteSingle(ctx context.Context, sessionID uuid.UUID, clientETag string, clientSize int64) (*domain.FileAsset, error) {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != domain.SessionKindSingle {
		return nil, fmt.Errorf("%w: not a single-shot session", domain.ErrSessionNotUploading)
	}
	if sess.Status == domain.SessionStatusCompleted {
		// Duplicate completion call: hand back the original result.
		return s.uow.AssetRepo().FindBySession(ctx, sessionID)
	}
	if !sess.Status.AcceptsUploads() {
		return nil, domain.ErrSessionNotUploading
	}
	if sess.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	info, err := s.storage.HeadObject(ctx, sess.StorageKey)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: object never arrived in storage", domain.ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not verify object: %w", err)
	}

	if cleanETag(info.ETag) != cleanETag(clientETag) {
		return nil, domain.ErrMismatchETag
	}
	if info.SizeBytes != clientSize || info.SizeBytes != sess.SizeBytes {
		return nil, domain.ErrSizeMismatch
	}

	return s.finishCompletion(ctx, sess, cleanETag(info.ETag))
}

// finishCompletion performs the local completed transition: session status,
// file asset row and outbox message commit together or not at all.
func (s *sessionService) finishCompletion(ctx context.Context, sess *domain.UploadSession, etag string) (*domain.FileAsset, error) {
	asset := domain.FileAsset{
		ID:          uuid.New(),
		SessionID:   &sess.ID,
		Bucket:      sess.Bucket,
		StorageKey:  sess.StorageKey,
		FileName:    sess.FileName,
		ContentType: sess.ContentType,
		SizeBytes:   sess.SizeBytes,
		ETag:        etag,
	}

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.SessionRepo().UpdateStatus(ctx, sess.ID, domain.SessionStatusCompleted); err != nil {
			return err
		}
		if err := uow.AssetRepo().Insert(ctx, asset); err != nil {
			return err
		}
		return s.outbox.Append(ctx, uow, sess.ID.String(), domain.EventTypeUploadCompleted, domain.UploadCompletedPayload{
			SessionID:   sess.ID,
			FileAssetID: asset.ID,
			Bucket:      sess.Bucket,
			StorageKey:  sess.StorageKey,
			ETag:        etag,
			SizeBytes:   sess.SizeBytes,
		})
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not complete session: %w", txErr)
	}

	s.logger.Info("upload session completed",
		"session_id", sess.ID,
		"file_asset_id", asset.ID,
		"storage_key", sess.StorageKey,
	)
	return &asset, nil
}
