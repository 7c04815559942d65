package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// UploadSessionRepository is an interface to interact with upload session repositories.
// Create must surface the storage-level unique constraint on the idempotency
// key as domain.ErrAlreadyExists; a check-then-insert is not race-safe.
type UploadSessionRepository interface {
	Create(ctx context.Context, session domain.UploadSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.UploadSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error
	FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.UploadSession, error)
}

// CompletedPartRepository records uploaded chunks of multipart sessions.
// Add must surface the (session, part number) unique constraint as
// domain.ErrAlreadyExists.
type CompletedPartRepository interface {
	Add(ctx context.Context, part domain.CompletedPart) error
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CompletedPart, error)
	FindByNumber(ctx context.Context, sessionID uuid.UUID, partNumber int) (*domain.CompletedPart, error)
}

// InitSingleRequest carries the client metadata for a single-shot session
type InitSingleRequest struct {
	IdempotencyKey string
	FileName       string
	ContentType    string
	SizeBytes      int64
	Purpose        string
	RequestedBy    string
}

// InitMultipartRequest carries the client metadata for a multipart session
type InitMultipartRequest struct {
	IdempotencyKey string
	FileName       string
	ContentType    string
	SizeBytes      int64
	Purpose        string
	RequestedBy    string
	PartSize       int64
}

// SingleUploadGrant is the result of opening a single-shot session
type SingleUploadGrant struct {
	Session      domain.UploadSession
	UploadURL    string
	URLExpiresAt time.Time
	Replayed     bool
}

// MultipartUploadGrant is the result of opening a multipart session
type MultipartUploadGrant struct {
	Session    domain.UploadSession
	UploadID   string
	PartSize   int64
	TotalParts int
	Replayed   bool
}

// SessionService owns the lifecycle of upload sessions
type SessionService interface {
	InitSingle(ctx context.Context, req InitSingleRequest) (*SingleUploadGrant, error)
	InitMultipart(ctx context.Context, req InitMultipartRequest) (*MultipartUploadGrant, error)
	IssuePartURL(ctx context.Context, sessionID uuid.UUID, partNumber int) (string, time.Time, error)
	RecordPartCompletion(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error)
	ListParts(ctx context.Context, sessionID uuid.UUID, maxParts int, partNumberMarker int) ([]domain.CompletedPart, int, error)
	CompleteSingle(ctx context.Context, sessionID uuid.UUID, clientETag string, clientSize int64) (*domain.FileAsset, error)
	CompleteMultipart(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error)
	Abort(ctx context.Context, sessionID uuid.UUID) error
	Expire(ctx context.Context, sessionID uuid.UUID) error
	PresignDownload(ctx context.Context, assetID uuid.UUID) (string, time.Time, error)
}
