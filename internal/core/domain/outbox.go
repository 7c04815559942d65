package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the dispatch state of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusSent       OutboxStatus = "sent"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// Event types carried by outbox messages
const (
	EventTypeUploadCompleted    = "UploadCompleted"
	EventTypeDownloadRequested  = "DownloadRequested"
	EventTypeDownloadCompleted  = "DownloadCompleted"
	EventTypeDownloadFailed     = "DownloadFailed"
)

// OutboxMessage is written in the same local transaction as the aggregate
// state change it documents. Once written it is owned by the scheduler; the
// originating use case never updates it.
type OutboxMessage struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	Status      OutboxStatus
	RetryCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}

// NewOutboxMessage builds a pending message with a JSON-encoded payload
func NewOutboxMessage(aggregateID, eventType string, payload any) (OutboxMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     body,
		Status:      OutboxStatusPending,
	}, nil
}

// UploadCompletedPayload is the body of an UploadCompleted outbox message
type UploadCompletedPayload struct {
	SessionID   uuid.UUID `json:"session_id"`
	FileAssetID uuid.UUID `json:"file_asset_id"`
	Bucket      string    `json:"bucket"`
	StorageKey  string    `json:"storage_key"`
	ETag        string    `json:"etag"`
	SizeBytes   int64     `json:"size_bytes"`
}

// DownloadRequestedPayload is the body of a DownloadRequested outbox message
type DownloadRequestedPayload struct {
	DownloadID uuid.UUID `json:"download_id"`
	SourceURL  string    `json:"source_url"`
}

// DownloadResultPayload is the body of a DownloadCompleted or DownloadFailed
// outbox message
type DownloadResultPayload struct {
	DownloadID   uuid.UUID  `json:"download_id"`
	FileAssetID  *uuid.UUID `json:"file_asset_id,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
