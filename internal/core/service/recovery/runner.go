package recovery

import (
	"context"
	"log/slog"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/port"
)

// Runner periodically executes every recovery sweep
type Runner struct {
	service       port.RecoveryService
	cfg           config.RecoveryConfig
	finalizeGrace time.Duration
	staleOutbox   time.Duration
	logger        *slog.Logger
}

// NewRunner creates a recovery runner
func NewRunner(service port.RecoveryService, cfg config.RecoveryConfig, finalizeGrace, staleOutbox time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		service:       service,
		cfg:           cfg,
		finalizeGrace: finalizeGrace,
		staleOutbox:   staleOutbox,
		logger:        logger,
	}
}

// Start runs recovery sweeps until the context is cancelled
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("recovery runner started", "interval", r.cfg.Interval)

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			r.logger.Info("recovery runner stopped")
			return
		}
	}
}

// RunOnce executes one pass of all sweeps. Sweeps are independent; one
// failing does not stop the others.
func (r *Runner) RunOnce(ctx context.Context) {
	now := time.Now()

	if _, err := r.service.ExpireStaleSessions(ctx, now); err != nil {
		r.logger.Error("session expiry sweep failed", "error", err)
	}
	if _, err := r.service.RecoverStuckDownloads(ctx, now.Add(-r.cfg.DownloadStaleAfter)); err != nil {
		r.logger.Error("download recovery sweep failed", "error", err)
	}
	if _, err := r.service.RequeueStaleOutbox(ctx, now.Add(-r.staleOutbox)); err != nil {
		r.logger.Error("outbox requeue sweep failed", "error", err)
	}
	if _, err := r.service.RequeueStaleWebhooks(ctx, now.Add(-r.staleOutbox)); err != nil {
		r.logger.Error("webhook requeue sweep failed", "error", err)
	}
	if _, err := r.service.ResolvePendingFinalizes(ctx, now.Add(-r.finalizeGrace)); err != nil {
		r.logger.Error("finalize reconciliation sweep failed", "error", err)
	}
}
