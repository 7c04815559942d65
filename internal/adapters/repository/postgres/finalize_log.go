package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

type sqlFinalizeLogRepository struct {
	db SQLQuerier
}

// NewSQLFinalizeLogRepository creates a new sqlFinalizeLogRepository
func NewSQLFinalizeLogRepository(db SQLQuerier) port.FinalizeLogRepository {
	return &sqlFinalizeLogRepository{db: db}
}

const finalizeColumns = `
	id, op_id, idem_key, state, outcome_type, outcome_message, created_at, completed_at`

// Insert inserts a pending finalize log entry. The unique constraint on
// idem_key surfaces as domain.ErrAlreadyExists.
func (s *sqlFinalizeLogRepository) Insert(ctx context.Context, entry domain.FinalizeLog) error {
	query := `
		INSERT INTO finalize_log (id, op_id, idem_key, state, outcome_type, outcome_message)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.OpID, entry.IdemKey, entry.State, entry.OutcomeType, entry.OutcomeMessage)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlFinalizeLogRepository) FindByIdemKey(ctx context.Context, idemKey string) (*domain.FinalizeLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM finalize_log WHERE idem_key = $1`, finalizeColumns)

	var row dbFinalizeLog
	err := s.db.QueryRowContext(ctx, query, idemKey).Scan(
		&row.ID,
		&row.OpID,
		&row.IdemKey,
		&row.State,
		&row.OutcomeType,
		&row.OutcomeMessage,
		&row.CreatedAt,
		&row.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFinalizeLogNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Complete closes the entry with its definitive outcome
func (s *sqlFinalizeLogRepository) Complete(ctx context.Context, id uuid.UUID, outcomeType, outcomeMessage string) error {
	query := `
		UPDATE finalize_log
		SET state = 'completed', outcome_type = $1, outcome_message = $2, completed_at = now()
		WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, outcomeType, outcomeMessage, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrFinalizeLogNotFound
	}

	return nil
}

// Reopen resets a closed entry to pending so the guarded call can run again
// under the same key. Only closed entries reopen; a pending one is still owned
// by an in-flight call.
func (s *sqlFinalizeLogRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE finalize_log
		SET state = 'pending', outcome_type = '', outcome_message = '',
		    created_at = now(), completed_at = NULL
		WHERE id = $1 AND state = 'completed'`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrFinalizeLogNotFound
	}

	return nil
}

// FindStalePending returns pending entries older than the cutoff
func (s *sqlFinalizeLogRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.FinalizeLog, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM finalize_log
		WHERE state = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, finalizeColumns)

	rows, err := s.db.QueryContext(ctx, query, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.FinalizeLog
	for rows.Next() {
		var row dbFinalizeLog
		if err := rows.Scan(
			&row.ID,
			&row.OpID,
			&row.IdemKey,
			&row.State,
			&row.OutcomeType,
			&row.OutcomeMessage,
			&row.CreatedAt,
			&row.CompletedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

type dbFinalizeLog struct {
	ID             uuid.UUID    `db:"id"`
	OpID           uuid.UUID    `db:"op_id"`
	IdemKey        string       `db:"idem_key"`
	State          string       `db:"state"`
	OutcomeType    string       `db:"outcome_type"`
	OutcomeMessage string       `db:"outcome_message"`
	CreatedAt      time.Time    `db:"created_at"`
	CompletedAt    sql.NullTime `db:"completed_at"`
}

// ToDomain converts db obj to domain
func (f *dbFinalizeLog) ToDomain() *domain.FinalizeLog {
	entry := &domain.FinalizeLog{
		ID:             f.ID,
		OpID:           f.OpID,
		IdemKey:        f.IdemKey,
		State:          domain.FinalizeState(f.State),
		OutcomeType:    f.OutcomeType,
		OutcomeMessage: f.OutcomeMessage,
		CreatedAt:      f.CreatedAt,
	}
	if f.CompletedAt.Valid {
		completed := f.CompletedAt.Time
		entry.CompletedAt = &completed
	}
	return entry
}
