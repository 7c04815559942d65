package port

import (
	"context"
	"time"
)

// RecoveryResult counts per-item outcomes of one sweep
type RecoveryResult struct {
	Total     int
	Succeeded int
	Failed    int
}

// RecoveryService re-drives work items stuck in an in-flight state. Items are
// re-enqueued through the same entry point a fresh request would use, never
// re-executed in place.
type RecoveryService interface {
	ExpireStaleSessions(ctx context.Context, now time.Time) (RecoveryResult, error)
	RecoverStuckDownloads(ctx context.Context, staleBefore time.Time) (RecoveryResult, error)
	RequeueStaleOutbox(ctx context.Context, staleBefore time.Time) (int, error)
	RequeueStaleWebhooks(ctx context.Context, staleBefore time.Time) (int, error)
	// ResolvePendingFinalizes reconciles interrupted finalize calls against
	// storage truth.
	ResolvePendingFinalizes(ctx context.Context, createdBefore time.Time) (RecoveryResult, error)
}
