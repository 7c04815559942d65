package webhook

import (
	"context"
	"log/slog"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
)

// Dispatcher drains the webhook outbox and POSTs each delivery to its URL.
// Delivery is at-least-once: a send whose acknowledgement is lost will be
// repeated, so the receiving side must tolerate duplicates.
type Dispatcher struct {
	webhookRepo port.WebhookDeliveryRepository
	sender      port.WebhookSender
	cfg         config.WebhookConfig
	logger      *slog.Logger
}

// NewDispatcher creates a webhook dispatcher
func NewDispatcher(webhookRepo port.WebhookDeliveryRepository, sender port.WebhookSender, cfg config.WebhookConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		webhookRepo: webhookRepo,
		sender:      sender,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start runs dispatch cycles until the context is cancelled
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	d.logger.Info("webhook dispatcher started", "interval", d.cfg.Interval, "batch_size", d.cfg.BatchSize)

	for {
		select {
		case <-ticker.C:
			if err := d.RunCycle(ctx); err != nil {
				d.logger.Error("webhook cycle failed", "error", err)
			}
		case <-ctx.Done():
			d.logger.Info("webhook dispatcher stopped")
			return
		}
	}
}

// RunCycle claims one batch of pending deliveries and attempts each of them
func (d *Dispatcher) RunCycle(ctx context.Context) error {
	batch, err := d.webhookRepo.ClaimPending(ctx, d.cfg.BatchSize)
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, delivery := range batch {
		if ctx.Err() != nil {
			break
		}
		if d.attempt(ctx, delivery) {
			sent++
		} else {
			failed++
		}
	}

	if sent+failed > 0 {
		d.logger.Info("webhook cycle completed", "sent", sent, "failed", failed)
	}
	return nil
}

// attempt sends one delivery and advances its state. A failed send goes back
// to pending until the retry budget is spent.
func (d *Dispatcher) attempt(ctx context.Context, delivery domain.WebhookDelivery) bool {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	sendErr := d.sender.Send(sendCtx, delivery.URL, delivery.Payload())
	if sendErr == nil {
		if err := d.webhookRepo.MarkSent(ctx, delivery.ID); err != nil {
			d.logger.Error("sent webhook but failed to mark delivery", "delivery_id", delivery.ID, "error", err)
		}
		return true
	}

	if delivery.RetryCount >= domain.WebhookMaxRetries {
		d.logger.Error("webhook delivery exhausted retries",
			"delivery_id", delivery.ID,
			"download_id", delivery.DownloadID,
			"url", delivery.URL,
			"error", sendErr,
		)
		if err := d.webhookRepo.MarkFailed(ctx, delivery.ID, sendErr.Error()); err != nil {
			d.logger.Error("failed to mark webhook delivery failed", "delivery_id", delivery.ID, "error", err)
		}
		return false
	}

	d.logger.Warn("webhook delivery failed, will retry",
		"delivery_id", delivery.ID,
		"retry_count", delivery.RetryCount,
		"error", sendErr,
	)
	if err := d.webhookRepo.MarkRetry(ctx, delivery.ID, sendErr.Error()); err != nil {
		d.logger.Error("failed to mark webhook retry", "delivery_id", delivery.ID, "error", err)
	}
	return false
}
