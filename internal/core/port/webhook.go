package port

import (
	"context"
	"time"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookDeliveryRepository persists webhook outbox rows. ClaimPending
// atomically moves the returned rows to processing so concurrent dispatchers
// never double-pick a delivery.
type WebhookDeliveryRepository interface {
	Insert(ctx context.Context, delivery domain.WebhookDelivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.WebhookDelivery, error)
	// ClaimPending returns up to limit pending deliveries ordered by creation time.
	ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	// MarkRetry records a failed attempt and returns the delivery to pending.
	MarkRetry(ctx context.Context, id uuid.UUID, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	// RequeueStale resets processing rows untouched since staleBefore back to
	// pending and reports how many were reclaimed.
	RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error)
}

// WebhookSender performs the outbound HTTP POST
type WebhookSender interface {
	Send(ctx context.Context, url string, payload domain.WebhookPayload) error
}
