package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// ExternalDownloadRepository persists external download requests
type ExternalDownloadRepository interface {
	Insert(ctx context.Context, dl domain.ExternalDownload) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownload, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalDownload, error)
	Update(ctx context.Context, dl domain.ExternalDownload) error
	// FindStuck returns non-terminal downloads untouched since staleBefore.
	FindStuck(ctx context.Context, staleBefore time.Time, limit int) ([]domain.ExternalDownload, error)
}

// SourceFetcher retrieves the bytes behind an external download URL
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// RequestDownloadCommand asks the service to ingest a remote file
type RequestDownloadCommand struct {
	IdempotencyKey string
	SourceURL      string
	WebhookURL     string
}

// DownloadService ingests remote files into object storage and notifies the
// requester over a webhook.
type DownloadService interface {
	Request(ctx context.Context, cmd RequestDownloadCommand) (*domain.ExternalDownload, bool, error)
	Process(ctx context.Context, downloadID uuid.UUID) error
}
