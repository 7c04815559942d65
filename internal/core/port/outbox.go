package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// OutboxRepository persists outbox messages. Claim methods atomically move
// the returned rows to processing so concurrent schedulers never double-pick
// a message.
type OutboxRepository interface {
	Insert(ctx context.Context, msg domain.OutboxMessage) error
	FindByAggregate(ctx context.Context, aggregateID string) ([]domain.OutboxMessage, error)
	// ClaimPending returns up to limit pending messages ordered by creation time (FIFO).
	ClaimPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	// ClaimRetryable returns failed messages below the retry budget whose last
	// update is older than failedBefore.
	ClaimRetryable(ctx context.Context, maxRetries int, failedBefore time.Time, limit int) ([]domain.OutboxMessage, error)
	// ClaimStale returns processing messages untouched since staleBefore.
	ClaimStale(ctx context.Context, staleBefore time.Time, limit int) ([]domain.OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	// MarkFailed records a dispatch failure and increments the retry count.
	MarkFailed(ctx context.Context, id uuid.UUID) error
	// RequeueStale resets processing rows untouched since staleBefore back to
	// pending and reports how many were reclaimed.
	RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error)
}

// OutboxWriter appends a message in the caller's transaction. It never talks
// to the message queue; that is what makes the write atomic with the domain
// state change it documents.
type OutboxWriter interface {
	Append(ctx context.Context, uow UnitOfWork, aggregateID, eventType string, payload any) error
}
