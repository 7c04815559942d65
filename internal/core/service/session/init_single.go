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

// InitSingle opens a single-shot upload session and issues one presigned PUT
// URL. A retransmitted request with the same idempotency key replays the
// original session instead of creating a second upload slot.
func (s *sessionService) InitSingle(ctx context.Context, req port.InitSingleRequest) (*port.SingleUploadGrant, error) {
	if req.IdempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key is required")
	}
	if req.SizeBytes <= 0 {
		return nil, domain.ErrFileSizeTooSmall
	}
	if req.SizeBytes > s.cfg.SingleUploadMaxSize {
		return nil, domain.ErrFileSizeTooBig
	}
	mimeType := extractMimeType(req.ContentType)
	if mimeType == "" {
		return nil, fmt.Errorf("invalid content type: %s", req.ContentType)
	}

	now := time.Now()
	sess := domain.UploadSession{
		ID:             uuid.New(),
		IdempotencyKey: req.IdempotencyKey,
		Kind:           domain.SessionKindSingle,
		Bucket:         s.bucket,
		FileName:       req.FileName,
		ContentType:    mimeType,
		SizeBytes:      req.SizeBytes,
		Purpose:        req.Purpose,
		RequestedBy:    req.RequestedBy,
		Status:         domain.SessionStatusInitiated,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
	}
	sess.StorageKey = buildStorageKey(req.Purpose, sess.ID)

	err := s.uow.SessionRepo().Create(ctx, sess)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return s.replaySingle(ctx, req.IdempotencyKey, now)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create upload session: %w", err)
	}

	url, urlExpiresAt, err := s.storage.PresignPut(ctx, sess.StorageKey, mimeType, s.cfg.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("could not presign upload: %w", err)
	}

	s.logger.Info("single upload session created",
		"session_id", sess.ID,
		"storage_key", sess.StorageKey,
		"requested_by", req.RequestedBy,
	)
	return &port.SingleUploadGrant{Session: sess, UploadURL: url, URLExpiresAt: urlExpiresAt}, nil
}

// replaySingle returns the original result for a duplicate idempotency key.
// The presigned URL is reissued against the same object key, so the caller
// never ends up with a second upload slot.
func (s *sessionService) replaySingle(ctx context.Context, idemKey string, now time.Time) (*port.SingleUploadGrant, error) {
	existing, err := s.uow.SessionRepo().FindByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return nil, err
	}
	if existing.Kind != domain.SessionKindSingle {
		return nil, domain.ErrDuplicateIdempotencyKey
	}
	if existing.Status == domain.SessionStatusExpired || existing.IsExpired(now) {
		return nil, domain.ErrDuplicateIdempotencyKey
	}

	url, urlExpiresAt, err := s.storage.PresignPut(ctx, existing.StorageKey, existing.ContentType, s.cfg.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("could not presign upload: %w", err)
	}

	s.logger.Info("single upload session replayed", "session_id", existing.ID, "idempotency_key", idemKey)
	return &port.SingleUploadGrant{Session: *existing, UploadURL: url, URLExpiresAt: urlExpiresAt, Replayed: true}, nil
}
