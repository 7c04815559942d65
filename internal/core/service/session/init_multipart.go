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

// InitMultipart opens a multipart upload session. The provider-side multipart
// upload is initiated before the session row is written; the storage call
// stays outside any transaction.
func (s *sessionService) InitMultipart(ctx context.Context, req port.InitMultipartRequest) (*port.MultipartUploadGrant, error) {
	if req.IdempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key is required")
	}
	if req.SizeBytes <= s.cfg.SingleUploadMaxSize {
		return nil, domain.ErrFileSizeTooSmall
	}
	if req.SizeBytes > s.cfg.MultipartMaxSize {
		return nil, domain.ErrFileSizeTooBig
	}
	mimeType := extractMimeType(req.ContentType)
	if mimeType == "" {
		return nil, fmt.Errorf("invalid content type: %s", req.ContentType)
	}

	partSize := req.PartSize
	if partSize <= 0 {
		partSize = s.cfg.DefaultPartSize
	}
	totalParts := domain.TotalPartsFor(req.SizeBytes, partSize)

	now := time.Now()
	sess := domain.UploadSession{
		ID:             uuid.New(),
		IdempotencyKey: req.IdempotencyKey,
		Kind:           domain.SessionKindMultipart,
		Bucket:         s.bucket,
		FileName:       req.FileName,
		ContentType:    mimeType,
		SizeBytes:      req.SizeBytes,
		Purpose:        req.Purpose,
		RequestedBy:    req.RequestedBy,
		PartSize:       partSize,
		TotalParts:     totalParts,
		Status:         domain.SessionStatusInitiated,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
	}
	sess.StorageKey = buildStorageKey(req.Purpose, sess.ID)

	uploadID, err := s.storage.InitiateMultipart(ctx, sess.StorageKey, mimeType)
	if err != nil {
		return nil, fmt.Errorf("could not initiate multipart upload: %w", err)
	}
	sess.ProviderUploadID = uploadID

	err = s.uow.SessionRepo().Create(ctx, sess)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// The provider upload opened for the losing request is orphaned;
		// discard it before replaying the winner.
		if abortErr := s.storage.AbortMultipart(ctx, sess.StorageKey, uploadID); abortErr != nil {
			s.logger.Warn("failed to abort orphaned multipart upload", "upload_id", uploadID, "error", abortErr)
		}
		return s.replayMultipart(ctx, req.IdempotencyKey, now)
	}
	if err != nil {
		// The provider upload opened above has no session row pointing at it;
		// discard it so it is not orphaned.
		if abortErr := s.storage.AbortMultipart(ctx, sess.StorageKey, uploadID); abortErr != nil {
			s.logger.Warn("failed to abort orphaned multipart upload", "upload_id", uploadID, "error", abortErr)
		}
		return nil, fmt.Errorf("could not create upload session: %w", err)
	}

	s.logger.Info("multipart upload session created",
		"session_id", sess.ID,
		"upload_id", uploadID,
		"total_parts", totalParts,
	)
	return &port.MultipartUploadGrant{
		Session:    sess,
		UploadID:   uploadID,
		PartSize:   partSize,
		TotalParts: totalParts,
	}, nil
}

func (s *sessionService) replayMultipart(ctx context.Context, idemKey string, now time.Time) (*port.MultipartUploadGrant, error) {
	existing, err := s.uow.SessionRepo().FindByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return nil, err
	}
	if existing.Kind != domain.SessionKindMultipart {
		return nil, domain.ErrDuplicateIdempotencyKey
	}
	if existing.Status == domain.SessionStatusExpired || existing.IsExpired(now) {
		return nil, domain.ErrDuplicateIdempotencyKey
	}

	s.logger.Info("multipart upload session replayed", "session_id", existing.ID, "idempotency_key", idemKey)
	return &port.MultipartUploadGrant{
		Session:    *existing,
		UploadID:   existing.ProviderUploadID,
		PartSize:   existing.PartSize,
		TotalParts: existing.TotalParts,
		Replayed:   true,
	}, nil
}
