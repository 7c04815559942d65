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

type sqlExternalDownloadRepository struct {
	db SQLQuerier
}

// NewSQLExternalDownloadRepository creates a new sqlExternalDownloadRepository
func NewSQLExternalDownloadRepository(db SQLQuerier) port.ExternalDownloadRepository {
	return &sqlExternalDownloadRepository{db: db}
}

const downloadColumns = `
	id, idempotency_key, source_url, webhook_url, file_asset_id, status,
	attempt_count, error_message, created_at, updated_at`

// Insert inserts an external download. The unique constraint on
// idempotency_key surfaces as domain.ErrAlreadyExists.
func (s *sqlExternalDownloadRepository) Insert(ctx context.Context, dl domain.ExternalDownload) error {
	query := `
		INSERT INTO external_download (
			id, idempotency_key, source_url, webhook_url, file_asset_id,
			status, attempt_count, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		dl.ID,
		dl.IdempotencyKey,
		dl.SourceURL,
		dl.WebhookURL,
		dl.FileAssetID,
		dl.Status,
		dl.AttemptCount,
		dl.ErrorMessage,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlExternalDownloadRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownload, error) {
	query := fmt.Sprintf(`SELECT %s FROM external_download WHERE id = $1`, downloadColumns)
	return s.findOne(ctx, query, id)
}

func (s *sqlExternalDownloadRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalDownload, error) {
	query := fmt.Sprintf(`SELECT %s FROM external_download WHERE idempotency_key = $1`, downloadColumns)
	return s.findOne(ctx, query, key)
}

func (s *sqlExternalDownloadRepository) findOne(ctx context.Context, query string, arg any) (*domain.ExternalDownload, error) {
	var row dbExternalDownload
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&row.ID,
		&row.IdempotencyKey,
		&row.SourceURL,
		&row.WebhookURL,
		&row.FileAssetID,
		&row.Status,
		&row.AttemptCount,
		&row.ErrorMessage,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDownloadNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Update persists the mutable download fields
func (s *sqlExternalDownloadRepository) Update(ctx context.Context, dl domain.ExternalDownload) error {
	query := `
		UPDATE external_download
		SET status = $1, file_asset_id = $2, attempt_count = $3,
		    error_message = $4, updated_at = now()
		WHERE id = $5`

	result, err := s.db.ExecContext(ctx, query, dl.Status, dl.FileAssetID, dl.AttemptCount, dl.ErrorMessage, dl.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrDownloadNotFound
	}

	return nil
}

// FindStuck returns non-terminal downloads untouched since staleBefore
func (s *sqlExternalDownloadRepository) FindStuck(ctx context.Context, staleBefore time.Time, limit int) ([]domain.ExternalDownload, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM external_download
		WHERE status IN ('pending', 'in_progress') AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2`, downloadColumns)

	rows, err := s.db.QueryContext(ctx, query, staleBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []domain.ExternalDownload
	for rows.Next() {
		var row dbExternalDownload
		if err := rows.Scan(
			&row.ID,
			&row.IdempotencyKey,
			&row.SourceURL,
			&row.WebhookURL,
			&row.FileAssetID,
			&row.Status,
			&row.AttemptCount,
			&row.ErrorMessage,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		downloads = append(downloads, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return downloads, nil
}

type dbExternalDownload struct {
	ID             uuid.UUID     `db:"id"`
	IdempotencyKey string        `db:"idempotency_key"`
	SourceURL      string        `db:"source_url"`
	WebhookURL     string        `db:"webhook_url"`
	FileAssetID    uuid.NullUUID `db:"file_asset_id"`
	Status         string        `db:"status"`
	AttemptCount   int           `db:"attempt_count"`
	ErrorMessage   string        `db:"error_message"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (d *dbExternalDownload) ToDomain() *domain.ExternalDownload {
	dl := &domain.ExternalDownload{
		ID:             d.ID,
		IdempotencyKey: d.IdempotencyKey,
		SourceURL:      d.SourceURL,
		WebhookURL:     d.WebhookURL,
		Status:         domain.DownloadStatus(d.Status),
		AttemptCount:   d.AttemptCount,
		ErrorMessage:   d.ErrorMessage,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.FileAssetID.Valid {
		assetID := d.FileAssetID.UUID
		dl.FileAssetID = &assetID
	}
	return dl
}
