package postgres_test

import (
	"context"
	"testing"
	"time"

	"fileflow/internal/adapters/repository/postgres"
	"fileflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSqlCompletedPartRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	partRepo := postgres.NewSQLCompletedPartRepository(dbConnection)
	sessionRepo := postgres.NewSQLUploadSessionRepository(dbConnection)

	setupSession := func(t *testing.T) uuid.UUID {
		session := domain.UploadSession{
			ID:             uuid.New(),
			IdempotencyKey: uuid.NewString(),
			Kind:           domain.SessionKindMultipart,
			Bucket:         "fileflow",
			StorageKey:     "video/" + uuid.NewString(),
			FileName:       "clip.mp4",
			ContentType:    "video/mp4",
			SizeBytes:      25_000_000,
			PartSize:       10_000_000,
			TotalParts:     3,
			Status:         domain.SessionStatusUploading,
			ExpiresAt:      time.Now().Add(30 * time.Minute),
		}
		require.NoError(t, sessionRepo.Create(ctx, session))
		return session.ID
	}

	t.Run("Add - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := setupSession(t)
		part := domain.CompletedPart{SessionID: sessionID, PartNumber: 1, ETag: "etag-1", SizeBytes: 10_000_000}

		// Act
		err := partRepo.Add(ctx, part)

		// Assert
		require.NoError(t, err)
		found, err := partRepo.FindByNumber(ctx, sessionID, 1)
		require.NoError(t, err)
		require.Equal(t, "etag-1", found.ETag)
		require.Equal(t, int64(10_000_000), found.SizeBytes)
	})

	t.Run("Add - Duplicate part number", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := setupSession(t)
		part := domain.CompletedPart{SessionID: sessionID, PartNumber: 1, ETag: "etag-1"}
		require.NoError(t, partRepo.Add(ctx, part))

		// Act
		err := partRepo.Add(ctx, domain.CompletedPart{SessionID: sessionID, PartNumber: 1, ETag: "etag-other"})

		// Assert
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Add - Unknown session", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := partRepo.Add(ctx, domain.CompletedPart{SessionID: uuid.New(), PartNumber: 1, ETag: "etag-1"})

		// Assert
		require.Error(t, err)
	})

	t.Run("FindBySession - Ordered by part number", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := setupSession(t)
		require.NoError(t, partRepo.Add(ctx, domain.CompletedPart{SessionID: sessionID, PartNumber: 3, ETag: "etag-3"}))
		require.NoError(t, partRepo.Add(ctx, domain.CompletedPart{SessionID: sessionID, PartNumber: 1, ETag: "etag-1"}))
		require.NoError(t, partRepo.Add(ctx, domain.CompletedPart{SessionID: sessionID, PartNumber: 2, ETag: "etag-2"}))

		// Act
		parts, err := partRepo.FindBySession(ctx, sessionID)

		// Assert
		require.NoError(t, err)
		require.Len(t, parts, 3)
		require.Equal(t, 1, parts[0].PartNumber)
		require.Equal(t, 2, parts[1].PartNumber)
		require.Equal(t, 3, parts[2].PartNumber)
	})

	t.Run("FindByNumber - Not found", func(t *testing.T) {
		// Arrange
		truncate()
		sessionID := setupSession(t)

		// Act
		_, err := partRepo.FindByNumber(ctx, sessionID, 42)

		// Assert
		require.ErrorIs(t, err, domain.ErrPartNotFound)
	})
}
