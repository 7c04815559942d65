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

type sqlFileAssetRepository struct {
	db SQLQuerier
}

// NewSQLFileAssetRepository creates a new sqlFileAssetRepository
func NewSQLFileAssetRepository(db SQLQuerier) port.FileAssetRepository {
	return &sqlFileAssetRepository{db: db}
}

const assetColumns = `
	id, session_id, bucket, storage_key, file_name, content_type, size_bytes, etag, created_at`

// Insert inserts a file asset
func (s *sqlFileAssetRepository) Insert(ctx context.Context, asset domain.FileAsset) error {
	query := `
		INSERT INTO file_asset (
			id, session_id, bucket, storage_key, file_name, content_type, size_bytes, etag
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		asset.ID,
		asset.SessionID,
		asset.Bucket,
		asset.StorageKey,
		asset.FileName,
		asset.ContentType,
		asset.SizeBytes,
		asset.ETag,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlFileAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileAsset, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_asset WHERE id = $1`, assetColumns)
	return s.findOne(ctx, query, id)
}

func (s *sqlFileAssetRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_asset WHERE session_id = $1`, assetColumns)
	return s.findOne(ctx, query, sessionID)
}

func (s *sqlFileAssetRepository) findOne(ctx context.Context, query string, arg any) (*domain.FileAsset, error) {
	var row dbFileAsset
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&row.ID,
		&row.SessionID,
		&row.Bucket,
		&row.StorageKey,
		&row.FileName,
		&row.ContentType,
		&row.SizeBytes,
		&row.ETag,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileAssetNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

type dbFileAsset struct {
	ID          uuid.UUID     `db:"id"`
	SessionID   uuid.NullUUID `db:"session_id"`
	Bucket      string        `db:"bucket"`
	StorageKey  string        `db:"storage_key"`
	FileName    string        `db:"file_name"`
	ContentType string        `db:"content_type"`
	SizeBytes   int64         `db:"size_bytes"`
	ETag        string        `db:"etag"`
	CreatedAt   time.Time     `db:"created_at"`
}

// ToDomain converts db obj to domain
func (f *dbFileAsset) ToDomain() *domain.FileAsset {
	asset := &domain.FileAsset{
		ID:          f.ID,
		Bucket:      f.Bucket,
		StorageKey:  f.StorageKey,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		ETag:        f.ETag,
		CreatedAt:   f.CreatedAt,
	}
	if f.SessionID.Valid {
		sessionID := f.SessionID.UUID
		asset.SessionID = &sessionID
	}
	return asset
}
