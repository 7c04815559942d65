package outbox

import (
	"context"
	"log/slog"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
)

// dispatchLockKey guards a dispatch cycle against concurrent nodes
const dispatchLockKey = "fileflow:outbox:dispatch"

// Scheduler polls the outbox on a timer and relays messages to the broker.
// Within one table dispatch is FIFO by creation time; consumers must still
// tolerate out-of-order delivery once multiple nodes are draining.
type Scheduler struct {
	outboxRepo port.OutboxRepository
	publisher  port.MessagePublisher
	lock       port.DistributedLock
	cfg        config.OutboxConfig
	logger     *slog.Logger
}

// NewScheduler creates an outbox scheduler
func NewScheduler(outboxRepo port.OutboxRepository, publisher port.MessagePublisher, lock port.DistributedLock, cfg config.OutboxConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		lock:       lock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start runs dispatch cycles until the context is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("outbox scheduler started", "interval", s.cfg.Interval, "batch_size", s.cfg.BatchSize)

	for {
		select {
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				s.logger.Error("outbox cycle failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("outbox scheduler stopped")
			return
		}
	}
}

// RunCycle drains pending, retryable-failed and stale-processing messages,
// each capped at the batch size. A full page is followed up immediately
// instead of waiting for the next tick.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	acquired, err := s.lock.TryLock(ctx, dispatchLockKey, 0, s.cfg.LockLease)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger.Debug("outbox dispatch held by another node")
		return nil
	}
	defer func() {
		if err := s.lock.Unlock(ctx, dispatchLockKey); err != nil {
			s.logger.Error("failed to release dispatch lock", "error", err)
		}
	}()

	now := time.Now()
	sent, failed := 0, 0

	sent, failed = s.drain(ctx, sent, failed, func() ([]domain.OutboxMessage, error) {
		return s.outboxRepo.ClaimPending(ctx, s.cfg.BatchSize)
	})

	retryBefore := now.Add(-s.cfg.RetryBackoff)
	sent, failed = s.drain(ctx, sent, failed, func() ([]domain.OutboxMessage, error) {
		return s.outboxRepo.ClaimRetryable(ctx, s.cfg.MaxRetries, retryBefore, s.cfg.BatchSize)
	})

	staleBefore := now.Add(-s.cfg.StaleAfter)
	sent, failed = s.drain(ctx, sent, failed, func() ([]domain.OutboxMessage, error) {
		return s.outboxRepo.ClaimStale(ctx, staleBefore, s.cfg.BatchSize)
	})

	if sent+failed > 0 {
		s.logger.Info("outbox cycle completed", "sent", sent, "failed", failed)
	}
	return nil
}

// drain pages through one claim source until it returns a short page
func (s *Scheduler) drain(ctx context.Context, sent, failed int, claim func() ([]domain.OutboxMessage, error)) (int, int) {
	for {
		if ctx.Err() != nil {
			return sent, failed
		}

		batch, err := claim()
		if err != nil {
			s.logger.Error("failed to claim outbox batch", "error", err)
			return sent, failed
		}

		for _, msg := range batch {
			if s.dispatch(ctx, msg) {
				sent++
			} else {
				failed++
			}
		}

		if len(batch) < s.cfg.BatchSize {
			return sent, failed
		}
	}
}

// dispatch publishes one message and advances its status. A publish or
// bookkeeping failure is contained to this message so the rest of the batch
// still gets a chance.
func (s *Scheduler) dispatch(ctx context.Context, msg domain.OutboxMessage) bool {
	if s.publisher.Publish(ctx, msg.EventType, msg.Payload) {
		if err := s.outboxRepo.MarkSent(ctx, msg.ID); err != nil {
			s.logger.Error("published but failed to mark sent", "message_id", msg.ID, "error", err)
		}
		return true
	}

	s.logger.Warn("outbox publish failed",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"retry_count", msg.RetryCount,
	)
	if err := s.outboxRepo.MarkFailed(ctx, msg.ID); err != nil {
		s.logger.Error("failed to mark outbox message failed", "message_id", msg.ID, "error", err)
	}
	return false
}
