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

type sqlWebhookDeliveryRepository struct {
	db SQLQuerier
}

// NewSQLWebhookDeliveryRepository creates a new sqlWebhookDeliveryRepository
func NewSQLWebhookDeliveryRepository(db SQLQuerier) port.WebhookDeliveryRepository {
	return &sqlWebhookDeliveryRepository{db: db}
}

const webhookColumns = `
	id, download_id, url, status, result_status, file_asset_id, error_message,
	retry_count, last_error, sent_at, created_at, updated_at`

// Insert inserts a webhook delivery row
func (s *sqlWebhookDeliveryRepository) Insert(ctx context.Context, delivery domain.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_delivery (
			id, download_id, url, status, result_status, file_asset_id, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		delivery.ID,
		delivery.DownloadID,
		delivery.URL,
		delivery.Status,
		delivery.ResultStatus,
		delivery.FileAssetID,
		delivery.ErrorMessage,
	)
	return err
}

func (s *sqlWebhookDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.WebhookDelivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhook_delivery WHERE id = $1`, webhookColumns)

	var row dbWebhookDelivery
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.DownloadID,
		&row.URL,
		&row.Status,
		&row.ResultStatus,
		&row.FileAssetID,
		&row.ErrorMessage,
		&row.RetryCount,
		&row.LastError,
		&row.SentAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// ClaimPending atomically moves up to limit pending deliveries to processing
// and returns them oldest first. SKIP LOCKED keeps concurrent dispatchers off
// each other's rows.
func (s *sqlWebhookDeliveryRepository) ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error) {
	query := fmt.Sprintf(`
		UPDATE webhook_delivery
		SET status = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM webhook_delivery
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`, webhookColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []domain.WebhookDelivery
	for rows.Next() {
		var row dbWebhookDelivery
		if err := rows.Scan(
			&row.ID,
			&row.DownloadID,
			&row.URL,
			&row.Status,
			&row.ResultStatus,
			&row.FileAssetID,
			&row.ErrorMessage,
			&row.RetryCount,
			&row.LastError,
			&row.SentAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}

func (s *sqlWebhookDeliveryRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE webhook_delivery
		SET status = 'sent', sent_at = now(), updated_at = now()
		WHERE id = $1`
	return s.exec(ctx, query, id)
}

// MarkRetry spends one retry and puts the delivery back in the pending pool
func (s *sqlWebhookDeliveryRepository) MarkRetry(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE webhook_delivery
		SET status = 'pending', retry_count = retry_count + 1, last_error = $1, updated_at = now()
		WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, lastError, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrDeliveryNotFound
	}

	return nil
}

func (s *sqlWebhookDeliveryRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE webhook_delivery
		SET status = 'failed', last_error = $1, updated_at = now()
		WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, lastError, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrDeliveryNotFound
	}

	return nil
}

// RequeueStale resets processing deliveries abandoned by a dead dispatcher
// back to pending
func (s *sqlWebhookDeliveryRepository) RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error) {
	query := `
		UPDATE webhook_delivery
		SET status = 'pending', updated_at = now()
		WHERE id IN (
			SELECT id FROM webhook_delivery
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

func (s *sqlWebhookDeliveryRepository) exec(ctx context.Context, query string, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrDeliveryNotFound
	}

	return nil
}

type dbWebhookDelivery struct {
	ID           uuid.UUID     `db:"id"`
	DownloadID   uuid.UUID     `db:"download_id"`
	URL          string        `db:"url"`
	Status       string        `db:"status"`
	ResultStatus string        `db:"result_status"`
	FileAssetID  uuid.NullUUID `db:"file_asset_id"`
	ErrorMessage string        `db:"error_message"`
	RetryCount   int           `db:"retry_count"`
	LastError    string        `db:"last_error"`
	SentAt       sql.NullTime  `db:"sent_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (w *dbWebhookDelivery) ToDomain() *domain.WebhookDelivery {
	delivery := &domain.WebhookDelivery{
		ID:           w.ID,
		DownloadID:   w.DownloadID,
		URL:          w.URL,
		Status:       domain.WebhookStatus(w.Status),
		ResultStatus: domain.DownloadStatus(w.ResultStatus),
		ErrorMessage: w.ErrorMessage,
		RetryCount:   w.RetryCount,
		LastError:    w.LastError,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
	if w.FileAssetID.Valid {
		assetID := w.FileAssetID.UUID
		delivery.FileAssetID = &assetID
	}
	if w.SentAt.Valid {
		sent := w.SentAt.Time
		delivery.SentAt = &sent
	}
	return delivery
}
