package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// FinalizeLogRepository persists write-ahead records for guarded finalize
// calls. Insert must surface the unique idem key as domain.ErrAlreadyExists.
type FinalizeLogRepository interface {
	Insert(ctx context.Context, entry domain.FinalizeLog) error
	FindByIdemKey(ctx context.Context, idemKey string) (*domain.FinalizeLog, error)
	Complete(ctx context.Context, id uuid.UUID, outcomeType, outcomeMessage string) error
	// Reopen puts a closed entry back to pending so a definitively failed call
	// can be retried under the same key.
	Reopen(ctx context.Context, id uuid.UUID) error
	// FindStalePending returns pending entries created before the grace cutoff,
	// the crash indicator recovery sweeps on.
	FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.FinalizeLog, error)
}
