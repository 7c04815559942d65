package finalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

// Guard wraps a non-idempotent external finalize call in a write-ahead log
// entry so an interrupted call can be detected and reconciled after a crash.
type Guard interface {
	// Run writes a pending log entry, performs the call, and closes the entry
	// with the call's outcome — but only when that outcome is definitive. A
	// failure wrapping domain.ErrOutcomeUnknown leaves the entry pending for
	// the recovery sweep to verify against storage. A key whose previous run
	// succeeded is replayed from the log without touching the external
	// system; a key whose previous run definitively failed is reopened and
	// retried. A key still pending returns domain.ErrFinalizeInFlight.
	Run(ctx context.Context, opID uuid.UUID, idemKey string, call func(ctx context.Context) (string, error)) (string, error)
}

type walGuard struct {
	uow    port.UnitOfWork
	logger *slog.Logger
}

// NewGuard creates a write-ahead-log finalize guard
func NewGuard(uow port.UnitOfWork, logger *slog.Logger) Guard {
	return &walGuard{uow: uow, logger: logger}
}

func (g *walGuard) Run(ctx context.Context, opID uuid.UUID, idemKey string, call func(ctx context.Context) (string, error)) (string, error) {
	entry := domain.FinalizeLog{
		ID:      uuid.New(),
		OpID:    opID,
		IdemKey: idemKey,
		State:   domain.FinalizeStatePending,
	}

	err := g.uow.FinalizeLogRepo().Insert(ctx, entry)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return g.replay(ctx, idemKey, call)
	}
	if err != nil {
		return "", fmt.Errorf("could not write finalize log: %w", err)
	}

	return g.perform(ctx, entry.ID, idemKey, call)
}

// perform runs the guarded call and closes the log entry with its outcome
func (g *walGuard) perform(ctx context.Context, entryID uuid.UUID, idemKey string, call func(ctx context.Context) (string, error)) (string, error) {
	result, callErr := call(ctx)
	if callErr != nil {
		if errors.Is(callErr, domain.ErrOutcomeUnknown) {
			// The call may have landed anyway. The entry stays pending so the
			// recovery sweep arbitrates against storage truth; retries see
			// ErrFinalizeInFlight until then.
			g.logger.Warn("finalize outcome unknown, entry left pending", "idem_key", idemKey, "error", callErr)
			return "", callErr
		}
		// The remote side rejected the call, so the failure is definitive and
		// the entry closes; recovery does not treat it as an interrupted call.
		if markErr := g.uow.FinalizeLogRepo().Complete(ctx, entryID, domain.FinalizeOutcomeFailure, callErr.Error()); markErr != nil {
			g.logger.Error("failed to close finalize log after failure", "idem_key", idemKey, "error", markErr)
		}
		return "", callErr
	}

	if markErr := g.uow.FinalizeLogRepo().Complete(ctx, entryID, domain.FinalizeOutcomeSuccess, result); markErr != nil {
		// The external call landed; losing the completion write leaves a stale
		// pending entry for the recovery sweep to verify.
		g.logger.Error("failed to close finalize log after success", "idem_key", idemKey, "error", markErr)
	}
	return result, nil
}

// replay resolves a duplicate run from the recorded outcome instead of
// blindly re-invoking the non-idempotent call.
func (g *walGuard) replay(ctx context.Context, idemKey string, call func(ctx context.Context) (string, error)) (string, error) {
	existing, err := g.uow.FinalizeLogRepo().FindByIdemKey(ctx, idemKey)
	if err != nil {
		return "", err
	}

	if existing.State == domain.FinalizeStatePending {
		return "", domain.ErrFinalizeInFlight
	}

	switch existing.OutcomeType {
	case domain.FinalizeOutcomeSuccess, domain.FinalizeOutcomeVerified:
		g.logger.Info("finalize replayed from log", "idem_key", idemKey, "outcome", existing.OutcomeType)
		return existing.OutcomeMessage, nil
	default:
		// The previous call failed for sure, so retrying is safe.
		if reopenErr := g.uow.FinalizeLogRepo().Reopen(ctx, existing.ID); reopenErr != nil {
			return "", reopenErr
		}
		return g.perform(ctx, existing.ID, idemKey, call)
	}
}
