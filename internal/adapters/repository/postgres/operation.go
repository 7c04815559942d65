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

type sqlOperationRepository struct {
	db SQLQuerier
}

// NewSQLOperationRepository creates a new sqlOperationRepository
func NewSQLOperationRepository(db SQLQuerier) port.OperationRepository {
	return &sqlOperationRepository{db: db}
}

const operationColumns = `
	id, idem_key, biz_key, domain, event_type, state, attempt_count,
	max_attempts, next_retry_at, error_code, error_message, created_at, updated_at`

// Insert inserts an operation row. The unique constraint on idem_key surfaces
// as domain.ErrAlreadyExists.
func (s *sqlOperationRepository) Insert(ctx context.Context, op domain.Operation) error {
	query := `
		INSERT INTO idempotent_operation (
			id, idem_key, biz_key, domain, event_type, state, attempt_count,
			max_attempts, next_retry_at, error_code, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		op.ID,
		op.IdemKey,
		op.BizKey,
		op.Domain,
		op.EventType,
		op.State,
		op.AttemptCount,
		op.MaxAttempts,
		op.NextRetryAt,
		op.ErrorCode,
		op.ErrorMessage,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlOperationRepository) FindByIdemKey(ctx context.Context, idemKey string) (*domain.Operation, error) {
	query := fmt.Sprintf(`SELECT %s FROM idempotent_operation WHERE idem_key = $1`, operationColumns)
	return s.findOne(ctx, query, idemKey)
}

func (s *sqlOperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	query := fmt.Sprintf(`SELECT %s FROM idempotent_operation WHERE id = $1`, operationColumns)
	return s.findOne(ctx, query, id)
}

func (s *sqlOperationRepository) findOne(ctx context.Context, query string, arg any) (*domain.Operation, error) {
	var row dbOperation
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&row.ID,
		&row.IdemKey,
		&row.BizKey,
		&row.Domain,
		&row.EventType,
		&row.State,
		&row.AttemptCount,
		&row.MaxAttempts,
		&row.NextRetryAt,
		&row.ErrorCode,
		&row.ErrorMessage,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Update persists the mutable operation fields
func (s *sqlOperationRepository) Update(ctx context.Context, op domain.Operation) error {
	query := `
		UPDATE idempotent_operation
		SET state = $1, attempt_count = $2, next_retry_at = $3,
		    error_code = $4, error_message = $5, updated_at = now()
		WHERE id = $6`

	result, err := s.db.ExecContext(ctx, query, op.State, op.AttemptCount, op.NextRetryAt, op.ErrorCode, op.ErrorMessage, op.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

type dbOperation struct {
	ID           uuid.UUID    `db:"id"`
	IdemKey      string       `db:"idem_key"`
	BizKey       string       `db:"biz_key"`
	Domain       string       `db:"domain"`
	EventType    string       `db:"event_type"`
	State        string       `db:"state"`
	AttemptCount int          `db:"attempt_count"`
	MaxAttempts  int          `db:"max_attempts"`
	NextRetryAt  sql.NullTime `db:"next_retry_at"`
	ErrorCode    string       `db:"error_code"`
	ErrorMessage string       `db:"error_message"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (o *dbOperation) ToDomain() *domain.Operation {
	op := &domain.Operation{
		ID:           o.ID,
		IdemKey:      o.IdemKey,
		BizKey:       o.BizKey,
		Domain:       o.Domain,
		EventType:    o.EventType,
		State:        domain.OperationState(o.State),
		AttemptCount: o.AttemptCount,
		MaxAttempts:  o.MaxAttempts,
		ErrorCode:    o.ErrorCode,
		ErrorMessage: o.ErrorMessage,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.NextRetryAt.Valid {
		next := o.NextRetryAt.Time
		op.NextRetryAt = &next
	}
	return op
}
