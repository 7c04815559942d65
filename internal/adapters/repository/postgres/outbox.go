package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

type sqlOutboxRepository struct {
	db SQLQuerier
}

// NewSQLOutboxRepository creates a new sqlOutboxRepository
func NewSQLOutboxRepository(db SQLQuerier) port.OutboxRepository {
	return &sqlOutboxRepository{db: db}
}

const outboxColumns = `
	id, aggregate_id, event_type, payload, status, retry_count,
	created_at, updated_at, processed_at`

// Insert inserts an outbox message
func (s *sqlOutboxRepository) Insert(ctx context.Context, msg domain.OutboxMessage) error {
	query := `
		INSERT INTO outbox_message (id, aggregate_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, msg.ID, msg.AggregateID, msg.EventType, msg.Payload, msg.Status)
	return err
}

func (s *sqlOutboxRepository) FindByAggregate(ctx context.Context, aggregateID string) ([]domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM outbox_message
		WHERE aggregate_id = $1
		ORDER BY created_at`, outboxColumns)

	rows, err := s.db.QueryContext(ctx, query, aggregateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxRows(rows)
}

// ClaimPending atomically moves up to limit pending messages to processing
// and returns them oldest first. SKIP LOCKED keeps concurrent schedulers off
// each other's rows.
func (s *sqlOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		UPDATE outbox_message
		SET status = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM outbox_message
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, outboxColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxRows(rows)
}

// ClaimRetryable claims failed messages still inside the retry budget whose
// last failure is old enough to retry
func (s *sqlOutboxRepository) ClaimRetryable(ctx context.Context, maxRetries int, failedBefore time.Time, limit int) ([]domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		UPDATE outbox_message
		SET status = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM outbox_message
			WHERE status = 'failed' AND retry_count < $1 AND updated_at < $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, outboxColumns)

	rows, err := s.db.QueryContext(ctx, query, maxRetries, failedBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxRows(rows)
}

// ClaimStale claims processing messages abandoned by a dead dispatcher
func (s *sqlOutboxRepository) ClaimStale(ctx context.Context, staleBefore time.Time, limit int) ([]domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		UPDATE outbox_message
		SET updated_at = now()
		WHERE id IN (
			SELECT id FROM outbox_message
			WHERE status = 'processing' AND updated_at < $1
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, outboxColumns)

	rows, err := s.db.QueryContext(ctx, query, staleBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxRows(rows)
}

func (s *sqlOutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_message
		SET status = 'sent', processed_at = now(), updated_at = now()
		WHERE id = $1`
	return s.exec(ctx, query, id)
}

// MarkFailed records a dispatch failure and spends one retry
func (s *sqlOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_message
		SET status = 'failed', retry_count = retry_count + 1, updated_at = now()
		WHERE id = $1`
	return s.exec(ctx, query, id)
}

// RequeueStale resets abandoned processing rows back to pending
func (s *sqlOutboxRepository) RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error) {
	query := `
		UPDATE outbox_message
		SET status = 'pending', updated_at = now()
		WHERE id IN (
			SELECT id FROM outbox_message
			WHERE status = 'processing' AND updated_at < $1
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`

	result, err := s.db.ExecContext(ctx, query, staleBefore, limit)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (s *sqlOutboxRepository) exec(ctx context.Context, query string, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrOutboxMessageNotFound
	}

	return nil
}

func scanOutboxRows(rows *sql.Rows) ([]domain.OutboxMessage, error) {
	var messages []domain.OutboxMessage
	for rows.Next() {
		var row dbOutboxMessage
		if err := rows.Scan(
			&row.ID,
			&row.AggregateID,
			&row.EventType,
			&row.Payload,
			&row.Status,
			&row.RetryCount,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.ProcessedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

type dbOutboxMessage struct {
	ID          uuid.UUID    `db:"id"`
	AggregateID string       `db:"aggregate_id"`
	EventType   string       `db:"event_type"`
	Payload     []byte       `db:"payload"`
	Status      string       `db:"status"`
	RetryCount  int          `db:"retry_count"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	ProcessedAt sql.NullTime `db:"processed_at"`
}

// ToDomain converts db obj to domain
func (m *dbOutboxMessage) ToDomain() *domain.OutboxMessage {
	msg := &domain.OutboxMessage{
		ID:          m.ID,
		AggregateID: m.AggregateID,
		EventType:   m.EventType,
		Payload:     m.Payload,
		Status:      domain.OutboxStatus(m.Status),
		RetryCount:  m.RetryCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ProcessedAt.Valid {
		processed := m.ProcessedAt.Time
		msg.ProcessedAt = &processed
	}
	return msg
}
