package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SessionKind distinguishes single-shot from multipart upload sessions
type SessionKind string

const (
	SessionKindSingle    SessionKind = "single"
	SessionKindMultipart SessionKind = "multipart"
)

// SessionStatus represents the status of an upload session
type SessionStatus string

const (
	SessionStatusInitiated SessionStatus = "initiated"
	SessionStatusUploading SessionStatus = "uploading"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAborted   SessionStatus = "aborted"
	SessionStatusExpired   SessionStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAborted || s == SessionStatusExpired
}

// AcceptsUploads reports whether part URLs may still be issued for the session
func (s SessionStatus) AcceptsUploads() bool {
	return s == SessionStatusInitiated || s == SessionStatusUploading
}

// UploadSession represents an upload session.
// ExpiresAt is set once at creation and never moves; expiry is a one-way
// transition out of any non-terminal status.
type UploadSession struct {
	ID               uuid.UUID
	IdempotencyKey   string
	Kind             SessionKind
	Bucket           string
	StorageKey       string
	FileName         string
	ContentType      string
	SizeBytes        int64
	Purpose          string
	RequestedBy      string
	ProviderUploadID string
	PartSize         int64
	TotalParts       int
	Status           SessionStatus
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsExpired reports whether the session deadline has passed
func (s *UploadSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TotalPartsFor computes the number of parts a multipart upload of the given
// size splits into.
func TotalPartsFor(sizeBytes, partSize int64) int {
	if partSize <= 0 {
		return 0
	}
	n := sizeBytes / partSize
	if sizeBytes%partSize != 0 {
		n++
	}
	return int(n)
}

// CompletedPart records one uploaded chunk of a multipart session.
// Append-only, unique on (SessionID, PartNumber).
type CompletedPart struct {
	SessionID  uuid.UUID
	PartNumber int
	ETag       string
	SizeBytes  int64
	CreatedAt  time.Time
}

// PartSet validates the recorded parts of one multipart session against its
// declared total.
type PartSet struct {
	total int
	parts []CompletedPart
}

// NewPartSet builds a PartSet over the recorded parts
func NewPartSet(totalParts int, parts []CompletedPart) PartSet {
	return PartSet{total: totalParts, parts: parts}
}

// IsComplete reports whether every part number in [1, total] is present
// exactly once.
func (p PartSet) IsComplete() bool {
	if len(p.parts) != p.total {
		return false
	}
	_, err := p.Ordered()
	return err == nil
}

// Ordered returns the parts sorted ascending by part number, the exact order
// a storage finalize call requires. A gap, duplicate or out-of-range number is
// a data-integrity fault, never silently accepted.
func (p PartSet) Ordered() ([]CompletedPart, error) {
	ordered := make([]CompletedPart, len(p.parts))
	copy(ordered, p.parts)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PartNumber < ordered[j].PartNumber
	})

	for i, part := range ordered {
		if part.PartNumber < 1 || part.PartNumber > p.total {
			return nil, ErrInvalidPartNumber
		}
		if i > 0 && ordered[i-1].PartNumber == part.PartNumber {
			return nil, ErrDuplicatePart
		}
		if part.PartNumber != i+1 {
			return nil, ErrIncompleteParts
		}
	}
	return ordered, nil
}
