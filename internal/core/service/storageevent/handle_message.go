package storageevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// HandleMessage confirms a single-shot upload from the bucket notification
// the object landing emitted, so a client that never calls the completion
// endpoint still gets its session finalized.
func (s *storageEventService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.BucketEvent

	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("could not unmarshal bucket event: %w", err)
	}
	if len(event.Records) == 0 {
		return fmt.Errorf("no records in bucket event")
	}

	record := event.Records[0]

	decodedKey, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return err
	}

	sessionID, err := sessionIDFromKey(decodedKey)
	if err != nil {
		return err
	}

	s.logger.Info("handling bucket event",
		"event_name", record.EventName,
		"key", decodedKey,
		"session_id", sessionID,
	)

	switch record.EventName {
	case "s3:ObjectCreated:Put":
		_, completeErr := s.sessionService.CompleteSingle(ctx, sessionID, record.S3.Object.ETag, record.S3.Object.Size)
		if errors.Is(completeErr, domain.ErrSessionNotFound) {
			// Objects written outside a session (ingested downloads) also
			// raise notifications; nothing to confirm for those.
			s.logger.Info("no session for object, skipping", "key", decodedKey)
			return nil
		}
		return completeErr
	case "s3:ObjectCreated:CompleteMultipartUpload":
		// Multipart completion is driven by the owning request; the
		// notification is informational here.
		return nil
	default:
		s.logger.Info("ignoring bucket event", "event_name", record.EventName)
		return nil
	}
}

func sessionIDFromKey(key string) (uuid.UUID, error) {
	index := strings.LastIndex(key, "/")
	if index == -1 || index == len(key)-1 {
		return uuid.Nil, fmt.Errorf("no object id in key %q", key)
	}
	return uuid.Parse(key[index+1:])
}
