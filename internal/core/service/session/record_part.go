package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// RecordPartCompletion records one uploaded chunk. Resubmitting a part with
// the identical etag is a no-op; a different etag for an already recorded
// part number is rejected.
func (s *sessionService) RecordPartCompletion(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error) {
	sess, err := s.uow.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != domain.SessionKindMultipart {
		return nil, fmt.Errorf("%w: not a multipart session", domain.ErrSessionNotUploading)
	}
	if !sess.Status.AcceptsUploads() {
		return nil, domain.ErrSessionNotUploading
	}
	if sess.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}
	if partNumber < 1 || partNumber > sess.TotalParts {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidPartNumber, partNumber, sess.TotalParts)
	}

	part := domain.CompletedPart{
		SessionID:  sessionID,
		PartNumber: partNumber,
		ETag:       cleanETag(etag),
		SizeBytes:  sizeBytes,
	}

	err = s.uow.PartRepo().Add(ctx, part)
	if errors.Is(err, domain.ErrAlreadyExists) {
		existing, findErr := s.uow.PartRepo().FindByNumber(ctx, sessionID, partNumber)
		if findErr != nil {
			return nil, findErr
		}
		if existing.ETag == part.ETag {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: part %d already recorded with a different etag", domain.ErrDuplicatePart, partNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("could not record part: %w", err)
	}

	if sess.Status == domain.SessionStatusInitiated {
		if err := s.uow.SessionRepo().UpdateStatus(ctx, sess.ID, domain.SessionStatusUploading); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("part recorded",
		"session_id", sessionID,
		"part_number", partNumber,
		"size_bytes", sizeBytes,
	)
	return &part, nil
}
