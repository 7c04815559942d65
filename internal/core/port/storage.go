package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"
)

// ObjectInfo is the metadata a head call reports for a stored object
type ObjectInfo struct {
	ETag        string
	SizeBytes   int64
	ContentType string
}

// ObjectStorage is an interface to define object storage interactions.
// The bucket is adapter configuration; keys are relative to it.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
	PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, time.Time, error)
	InitiateMultipart(ctx context.Context, key, contentType string) (string, error)
	// CompleteMultipart finalizes the upload with parts in strictly ascending
	// part-number order and returns the assembled object's etag.
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []domain.CompletedPart) (string, error)
	AbortMultipart(ctx context.Context, key, uploadID string) error
	ListParts(ctx context.Context, key, uploadID string, maxParts, partNumberMarker int) ([]domain.CompletedPart, int, error)
	// HeadObject returns domain.ErrObjectNotFound when the key is absent.
	HeadObject(ctx context.Context, key string) (*ObjectInfo, error)
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
