package domain

import (
	"time"

	"github.com/google/uuid"
)

// FinalizeState represents the write-ahead state of a guarded finalize call
type FinalizeState string

const (
	FinalizeStatePending   FinalizeState = "pending"
	FinalizeStateCompleted FinalizeState = "completed"
)

// Finalize outcome types recorded when the log entry closes
const (
	FinalizeOutcomeSuccess    = "success"
	FinalizeOutcomeFailure    = "failure"
	FinalizeOutcomeVerified   = "verified_complete"
	FinalizeOutcomeUnverified = "unverified"
)

// FinalizeLog is the write-ahead record of intent to perform a non-idempotent
// external finalize call. Written pending immediately before the call and
// closed only after the call's result is durably known. A pending entry older
// than a grace period marks an interrupted finalize that recovery must
// reconcile against the external system's actual state.
type FinalizeLog struct {
	ID             uuid.UUID
	OpID           uuid.UUID
	IdemKey        string
	State          FinalizeState
	OutcomeType    string
	OutcomeMessage string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}
