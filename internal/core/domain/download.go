package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the status of an external download
type DownloadStatus string

const (
	DownloadStatusPending    DownloadStatus = "pending"
	DownloadStatusInProgress DownloadStatus = "in_progress"
	DownloadStatusCompleted  DownloadStatus = "completed"
	DownloadStatusFailed     DownloadStatus = "failed"
)

// IsTerminal reports whether the download reached a final state
func (s DownloadStatus) IsTerminal() bool {
	return s == DownloadStatusCompleted || s == DownloadStatusFailed
}

// ExternalDownload represents a server-side ingestion of a remote file into
// object storage, requested by a client service and reported back over a
// webhook.
type ExternalDownload struct {
	ID             uuid.UUID
	IdempotencyKey string
	SourceURL      string
	WebhookURL     string
	FileAssetID    *uuid.UUID
	Status         DownloadStatus
	AttemptCount   int
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
