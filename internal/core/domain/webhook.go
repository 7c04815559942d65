package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookMaxRetries is the retry budget after the first delivery attempt
const WebhookMaxRetries = 2

// WebhookStatus represents the delivery state of a webhook
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusSent       WebhookStatus = "sent"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// WebhookDelivery is the outbox row for one outbound notification. Delivery
// is at-least-once; the consumer is expected to handle duplicates.
type WebhookDelivery struct {
	ID           uuid.UUID
	DownloadID   uuid.UUID
	URL          string
	Status       WebhookStatus
	ResultStatus DownloadStatus
	FileAssetID  *uuid.UUID
	ErrorMessage string
	RetryCount   int
	LastError    string
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Payload builds the JSON body POSTed to the webhook URL
func (w *WebhookDelivery) Payload() WebhookPayload {
	return WebhookPayload{
		Status:       string(w.ResultStatus),
		FileAssetID:  w.FileAssetID,
		ErrorMessage: w.ErrorMessage,
	}
}

// WebhookPayload is the wire body of a webhook POST
type WebhookPayload struct {
	Status       string     `json:"status"`
	FileAssetID  *uuid.UUID `json:"fileAssetId,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}
