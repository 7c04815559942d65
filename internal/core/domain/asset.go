package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileAsset is the durable record of a fully uploaded or ingested object
type FileAsset struct {
	ID          uuid.UUID
	SessionID   *uuid.UUID
	Bucket      string
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	ETag        string
	CreatedAt   time.Time
}
