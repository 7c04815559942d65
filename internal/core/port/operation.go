package port

import (
	"context"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// OperationRepository persists the idempotent-operation ledger.
// Insert must surface the unique idem key constraint as domain.ErrAlreadyExists;
// that violation is the duplicate-detection signal.
type OperationRepository interface {
	Insert(ctx context.Context, op domain.Operation) error
	FindByIdemKey(ctx context.Context, idemKey string) (*domain.Operation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error)
	Update(ctx context.Context, op domain.Operation) error
}

// IdempotencyGuard maps a client-supplied idempotency key to at most one
// logical operation.
type IdempotencyGuard interface {
	// BeginOrReplay inserts a new pending operation, or returns the existing
	// one with replayed=true when the key was seen before.
	BeginOrReplay(ctx context.Context, idemKey, bizKey, opDomain, eventType string, maxAttempts int) (*domain.Operation, bool, error)
	RecordSuccess(ctx context.Context, opID uuid.UUID) error
	RecordFailure(ctx context.Context, opID uuid.UUID, errorCode, errorMessage string) (*domain.Operation, error)
}
