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

func TestSqlExternalDownloadRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	downloadRepo := postgres.NewSQLExternalDownloadRepository(dbConnection)
	assetRepo := postgres.NewSQLFileAssetRepository(dbConnection)

	newDownload := func(idemKey string) domain.ExternalDownload {
		return domain.ExternalDownload{
			ID:             uuid.New(),
			IdempotencyKey: idemKey,
			SourceURL:      "https://cdn.example.com/reports/q3.pdf",
			WebhookURL:     "https://example.com/hooks/downloads",
			Status:         domain.DownloadStatusPending,
		}
	}

	t.Run("Insert - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		dl := newDownload("dl-key-1")

		// Act
		err := downloadRepo.Insert(ctx, dl)

		// Assert
		require.NoError(t, err)
		saved, err := downloadRepo.FindByID(ctx, dl.ID)
		require.NoError(t, err)
		require.Equal(t, dl.ID, saved.ID)
		require.Equal(t, dl.SourceURL, saved.SourceURL)
		require.Equal(t, domain.DownloadStatusPending, saved.Status)
		require.Nil(t, saved.FileAssetID)
	})

	t.Run("Insert - Duplicate idempotency key", func(t *testing.T) {
		// Arrange
		truncate()
		require.NoError(t, downloadRepo.Insert(ctx, newDownload("dl-key-dup")))

		// Act
		err := downloadRepo.Insert(ctx, newDownload("dl-key-dup"))

		// Assert
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("FindByID - Not found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := downloadRepo.FindByID(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrDownloadNotFound)
	})

	t.Run("FindByIdempotencyKey - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		dl := newDownload("dl-key-find")
		require.NoError(t, downloadRepo.Insert(ctx, dl))

		// Act
		found, err := downloadRepo.FindByIdempotencyKey(ctx, "dl-key-find")

		// Assert
		require.NoError(t, err)
		require.Equal(t, dl.ID, found.ID)
	})

	t.Run("Update - Records completion with asset reference", func(t *testing.T) {
		// Arrange
		truncate()
		dl := newDownload("dl-key-update")
		require.NoError(t, downloadRepo.Insert(ctx, dl))

		asset := domain.FileAsset{
			ID:          uuid.New(),
			Bucket:      "fileflow",
			StorageKey:  "downloads/" + dl.ID.String(),
			FileName:    "q3.pdf",
			ContentType: "application/pdf",
			SizeBytes:   2048,
			ETag:        "etag-dl",
		}
		require.NoError(t, assetRepo.Insert(ctx, asset))

		dl.Status = domain.DownloadStatusCompleted
		dl.FileAssetID = &asset.ID
		dl.AttemptCount = 1

		// Act
		err := downloadRepo.Update(ctx, dl)

		// Assert
		require.NoError(t, err)
		saved, err := downloadRepo.FindByID(ctx, dl.ID)
		require.NoError(t, err)
		require.Equal(t, domain.DownloadStatusCompleted, saved.Status)
		require.NotNil(t, saved.FileAssetID)
		require.Equal(t, asset.ID, *saved.FileAssetID)
		require.Equal(t, 1, saved.AttemptCount)
	})

	t.Run("FindStuck - Only stale non-terminal downloads", func(t *testing.T) {
		// Arrange
		truncate()
		stuck := newDownload("dl-key-stuck")
		stuck.Status = domain.DownloadStatusInProgress
		require.NoError(t, downloadRepo.Insert(ctx, stuck))

		done := newDownload("dl-key-done")
		done.Status = domain.DownloadStatusCompleted
		require.NoError(t, downloadRepo.Insert(ctx, done))

		// Act
		found, err := downloadRepo.FindStuck(ctx, time.Now().Add(time.Minute), 10)

		// Assert
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, stuck.ID, found[0].ID)

		none, err := downloadRepo.FindStuck(ctx, time.Now().Add(-time.Minute), 10)
		require.NoError(t, err)
		require.Empty(t, none)
	})
}
