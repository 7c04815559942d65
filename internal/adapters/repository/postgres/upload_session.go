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

type sqlUploadSessionRepository struct {
	db SQLQuerier
}

// NewSQLUploadSessionRepository creates a new sqlUploadSessionRepository
func NewSQLUploadSessionRepository(db SQLQuerier) port.UploadSessionRepository {
	return &sqlUploadSessionRepository{db: db}
}

const sessionColumns = `
	id, idempotency_key, kind, bucket, storage_key, file_name, content_type,
	size_bytes, purpose, requested_by, provider_upload_id, part_size,
	total_parts, status, expires_at, created_at, updated_at`

// Create inserts an upload session. The unique constraint on idempotency_key
// surfaces as domain.ErrAlreadyExists.
func (s *sqlUploadSessionRepository) Create(ctx context.Context, session domain.UploadSession) error {
	query := `
		INSERT INTO upload_session (
			id, idempotency_key, kind, bucket, storage_key, file_name, content_type,
			size_bytes, purpose, requested_by, provider_upload_id, part_size,
			total_parts, status, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.IdempotencyKey,
		session.Kind,
		session.Bucket,
		session.StorageKey,
		session.FileName,
		session.ContentType,
		session.SizeBytes,
		session.Purpose,
		session.RequestedBy,
		session.ProviderUploadID,
		session.PartSize,
		session.TotalParts,
		session.Status,
		session.ExpiresAt,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlUploadSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_session WHERE id = $1`, sessionColumns)
	return s.findOne(ctx, query, id)
}

func (s *sqlUploadSessionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.UploadSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_session WHERE idempotency_key = $1`, sessionColumns)
	return s.findOne(ctx, query, key)
}

func (s *sqlUploadSessionRepository) findOne(ctx context.Context, query string, arg any) (*domain.UploadSession, error) {
	var row dbUploadSession
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&row.ID,
		&row.IdempotencyKey,
		&row.Kind,
		&row.Bucket,
		&row.StorageKey,
		&row.FileName,
		&row.ContentType,
		&row.SizeBytes,
		&row.Purpose,
		&row.RequestedBy,
		&row.ProviderUploadID,
		&row.PartSize,
		&row.TotalParts,
		&row.Status,
		&row.ExpiresAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// UpdateStatus updates status
func (s *sqlUploadSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	query := `UPDATE upload_session SET status = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// FindExpired returns non-terminal sessions past their deadline
func (s *sqlUploadSessionRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.UploadSession, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM upload_session
		WHERE status IN ('initiated', 'uploading') AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`, sessionColumns)

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.UploadSession
	for rows.Next() {
		var row dbUploadSession
		if err := rows.Scan(
			&row.ID,
			&row.IdempotencyKey,
			&row.Kind,
			&row.Bucket,
			&row.StorageKey,
			&row.FileName,
			&row.ContentType,
			&row.SizeBytes,
			&row.Purpose,
			&row.RequestedBy,
			&row.ProviderUploadID,
			&row.PartSize,
			&row.TotalParts,
			&row.Status,
			&row.ExpiresAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type dbUploadSession struct {
	ID               uuid.UUID `db:"id"`
	IdempotencyKey   string    `db:"idempotency_key"`
	Kind             string    `db:"kind"`
	Bucket           string    `db:"bucket"`
	StorageKey       string    `db:"storage_key"`
	FileName         string    `db:"file_name"`
	ContentType      string    `db:"content_type"`
	SizeBytes        int64     `db:"size_bytes"`
	Purpose          string    `db:"purpose"`
	RequestedBy      string    `db:"requested_by"`
	ProviderUploadID string    `db:"provider_upload_id"`
	PartSize         int64     `db:"part_size"`
	TotalParts       int       `db:"total_parts"`
	Status           string    `db:"status"`
	ExpiresAt        time.Time `db:"expires_at"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (s *dbUploadSession) ToDomain() *domain.UploadSession {
	return &domain.UploadSession{
		ID:               s.ID,
		IdempotencyKey:   s.IdempotencyKey,
		Kind:             domain.SessionKind(s.Kind),
		Bucket:           s.Bucket,
		StorageKey:       s.StorageKey,
		FileName:         s.FileName,
		ContentType:      s.ContentType,
		SizeBytes:        s.SizeBytes,
		Purpose:          s.Purpose,
		RequestedBy:      s.RequestedBy,
		ProviderUploadID: s.ProviderUploadID,
		PartSize:         s.PartSize,
		TotalParts:       s.TotalParts,
		Status:           domain.SessionStatus(s.Status),
		ExpiresAt:        s.ExpiresAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
