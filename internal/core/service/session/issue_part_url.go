package session

import (
	"context"
	"fmt"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// IssuePartURL presigns the upload URL for one part of a multipart session
func (s *sessionService) IssuePartURL(ctx context.Context, sessionID uuid.UUID, partNumber int) (string, time.Time, error) {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return "", time.Time{}, err
	}
	if sess.Kind != domain.SessionKindMultipart {
		return "", time.Time{}, fmt.Errorf("%w: not a multipart session", domain.ErrSessionNotUploading)
	}
	if !sess.Status.AcceptsUploads() {
		return "", time.Time{}, domain.ErrSessionNotUploading
	}
	if sess.IsExpired(time.Now()) {
		return "", time.Time{}, domain.ErrSessionExpired
	}
	if partNumber < 1 || partNumber > sess.TotalParts {
		return "", time.Time{}, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidPartNumber, partNumber, sess.TotalParts)
	}

	url, expiresAt, err := s.storage.PresignUploadPart(ctx, sess.StorageKey, sess.ProviderUploadID, partNumber, s.cfg.PresignTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not presign part: %w", err)
	}

	if sess.Status == domain.SessionStatusInitiated {
		if err := s.uow.SessionRepo().UpdateStatus(ctx, sess.ID, domain.SessionStatusUploading); err != nil {
			return "", time.Time{}, err
		}
	}
	return url, expiresAt, nil
}

// ListParts reports parts the storage provider has actually received, letting
// clients resume an interrupted upload.
func (s *sessionService) ListParts(ctx context.Context, sessionID uuid.UUID, maxParts int, partNumberMarker int) ([]domain.CompletedPart, int, error) {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if sess.Kind != domain.SessionKindMultipart {
		return nil, 0, fmt.Errorf("%w: not a multipart session", domain.ErrSessionNotUploading)
	}

	return s.storage.ListParts(ctx, sess.StorageKey, sess.ProviderUploadID, maxParts, partNumberMarker)
}
