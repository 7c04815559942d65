package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationState represents the state of an idempotent business operation
type OperationState string

const (
	OperationStatePending    OperationState = "pending"
	OperationStateInProgress OperationState = "in_progress"
	OperationStateCompleted  OperationState = "completed"
	OperationStateFailed     OperationState = "failed"
	OperationStateTimeout    OperationState = "timeout"
)

// IsTerminal reports whether the operation will never be retried again
func (s OperationState) IsTerminal() bool {
	return s == OperationStateCompleted || s == OperationStateTimeout
}

// Operation is the ledger row for one idempotent business operation.
// The unique IdemKey constraint is the sole duplicate-suppression mechanism:
// a second request with the same key is short-circuited, never re-executed.
type Operation struct {
	ID           uuid.UUID
	IdemKey      string
	BizKey       string
	Domain       string
	EventType    string
	State        OperationState
	AttemptCount int
	MaxAttempts  int
	NextRetryAt  *time.Time
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Backoff computes exponential retry delays, base × 2^attempt capped at Max
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before the given retry attempt
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := b.Base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.Max {
			return b.Max
		}
	}
	if delay > b.Max {
		return b.Max
	}
	return delay
}
