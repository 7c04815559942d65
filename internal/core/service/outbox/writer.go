package outbox

import (
	"context"
	"fmt"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
)

type writer struct{}

// NewWriter creates the transactional outbox writer
func NewWriter() port.OutboxWriter {
	return &writer{}
}

// Append inserts the message through the caller's unit of work. No queue
// call happens here; commit and message either land together or not at all.
func (w *writer) Append(ctx context.Context, uow port.UnitOfWork, aggregateID, eventType string, payload any) error {
	msg, err := domain.NewOutboxMessage(aggregateID, eventType, payload)
	if err != nil {
		return fmt.Errorf("could not encode outbox payload: %w", err)
	}
	return uow.OutboxRepo().Insert(ctx, msg)
}
