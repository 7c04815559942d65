package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
)

type sqlCompletedPartRepository struct {
	db SQLQuerier
}

// NewSQLCompletedPartRepository creates a new sqlCompletedPartRepository
func NewSQLCompletedPartRepository(db SQLQuerier) port.CompletedPartRepository {
	return &sqlCompletedPartRepository{db: db}
}

// Add records one uploaded part. The unique constraint on
// (session_id, part_number) surfaces as domain.ErrAlreadyExists.
func (s *sqlCompletedPartRepository) Add(ctx context.Context, part domain.CompletedPart) error {
	query := `
		INSERT INTO completed_part (session_id, part_number, etag, size_bytes)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, part.SessionID, part.PartNumber, part.ETag, part.SizeBytes)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *sqlCompletedPartRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CompletedPart, error) {
	query := `
		SELECT session_id, part_number, etag, size_bytes, created_at
		FROM completed_part
		WHERE session_id = $1
		ORDER BY part_number`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []domain.CompletedPart
	for rows.Next() {
		var row dbCompletedPart
		if err := rows.Scan(&row.SessionID, &row.PartNumber, &row.ETag, &row.SizeBytes, &row.CreatedAt); err != nil {
			return nil, err
		}
		parts = append(parts, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return parts, nil
}

func (s *sqlCompletedPartRepository) FindByNumber(ctx context.Context, sessionID uuid.UUID, partNumber int) (*domain.CompletedPart, error) {
	query := `
		SELECT session_id, part_number, etag, size_bytes, created_at
		FROM completed_part
		WHERE session_id = $1 AND part_number = $2`

	var row dbCompletedPart
	err := s.db.QueryRowContext(ctx, query, sessionID, partNumber).Scan(
		&row.SessionID,
		&row.PartNumber,
		&row.ETag,
		&row.SizeBytes,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

type dbCompletedPart struct {
	SessionID  uuid.UUID `db:"session_id"`
	PartNumber int       `db:"part_number"`
	ETag       string    `db:"etag"`
	SizeBytes  int64     `db:"size_bytes"`
	CreatedAt  time.Time `db:"created_at"`
}

// ToDomain converts db obj to domain
func (p *dbCompletedPart) ToDomain() *domain.CompletedPart {
	return &domain.CompletedPart{
		SessionID:  p.SessionID,
		PartNumber: p.PartNumber,
		ETag:       p.ETag,
		SizeBytes:  p.SizeBytes,
		CreatedAt:  p.CreatedAt,
	}
}
