package operation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

type idempotencyGuard struct {
	uow     port.UnitOfWork
	backoff domain.Backoff
	logger  *slog.Logger
}

// NewIdempotencyGuard creates a guard backed by the operation ledger
func NewIdempotencyGuard(uow port.UnitOfWork, backoff domain.Backoff, logger *slog.Logger) port.IdempotencyGuard {
	return &idempotencyGuard{uow: uow, backoff: backoff, logger: logger}
}

// BeginOrReplay inserts a pending operation row. The insert hitting the
// unique idem key constraint is the duplicate-detection signal; a separate
// existence check would not be race-safe under concurrent duplicates.
func (g *idempotencyGuard) BeginOrReplay(ctx context.Context, idemKey, bizKey, opDomain, eventType string, maxAttempts int) (*domain.Operation, bool, error) {
	op := domain.Operation{
		ID:          uuid.New(),
		IdemKey:     idemKey,
		BizKey:      bizKey,
		Domain:      opDomain,
		EventType:   eventType,
		State:       domain.OperationStatePending,
		MaxAttempts: maxAttempts,
	}

	err := g.uow.OperationRepo().Insert(ctx, op)
	if err == nil {
		return &op, false, nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return nil, false, err
	}

	existing, findErr := g.uow.OperationRepo().FindByIdemKey(ctx, idemKey)
	if findErr != nil {
		return nil, false, findErr
	}

	g.logger.Info("operation replayed",
		"idem_key", idemKey,
		"op_id", existing.ID,
		"state", existing.State,
	)
	return existing, true, nil
}

func (g *idempotencyGuard) RecordSuccess(ctx context.Context, opID uuid.UUID) error {
	op, err := g.uow.OperationRepo().FindByID(ctx, opID)
	if err != nil {
		return err
	}

	op.State = domain.OperationStateCompleted
	op.NextRetryAt = nil
	op.ErrorCode = ""
	op.ErrorMessage = ""
	return g.uow.OperationRepo().Update(ctx, *op)
}

// RecordFailure schedules the next retry with exponential backoff, or marks
// the operation timed out once the attempt budget is spent.
func (g *idempotencyGuard) RecordFailure(ctx context.Context, opID uuid.UUID, errorCode, errorMessage string) (*domain.Operation, error) {
	op, err := g.uow.OperationRepo().FindByID(ctx, opID)
	if err != nil {
		return nil, err
	}

	delay := g.backoff.Delay(op.AttemptCount)
	op.AttemptCount++
	op.ErrorCode = errorCode
	op.ErrorMessage = errorMessage

	if op.AttemptCount >= op.MaxAttempts {
		op.State = domain.OperationStateTimeout
		op.NextRetryAt = nil
	} else {
		next := time.Now().Add(delay)
		op.State = domain.OperationStateFailed
		op.NextRetryAt = &next
	}

	if err := g.uow.OperationRepo().Update(ctx, *op); err != nil {
		return nil, err
	}
	return op, nil
}
