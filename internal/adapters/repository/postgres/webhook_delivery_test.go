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

func TestSqlWebhookDeliveryRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	webhookRepo := postgres.NewSQLWebhookDeliveryRepository(dbConnection)
	downloadRepo := postgres.NewSQLExternalDownloadRepository(dbConnection)

	setupDownload := func(t *testing.T) uuid.UUID {
		dl := domain.ExternalDownload{
			ID:             uuid.New(),
			IdempotencyKey: uuid.NewString(),
			SourceURL:      "https://cdn.example.com/reports/q3.pdf",
			Status:         domain.DownloadStatusCompleted,
		}
		require.NoError(t, downloadRepo.Insert(ctx, dl))
		return dl.ID
	}

	newDelivery := func(downloadID uuid.UUID) domain.WebhookDelivery {
		return domain.WebhookDelivery{
			ID:           uuid.New(),
			DownloadID:   downloadID,
			URL:          "https://example.com/hooks/downloads",
			Status:       domain.WebhookStatusPending,
			ResultStatus: domain.DownloadStatusCompleted,
		}
	}

	t.Run("Insert and ClaimPending - Oldest first", func(t *testing.T) {
		// Arrange
		truncate()
		downloadID := setupDownload(t)
		first := newDelivery(downloadID)
		second := newDelivery(downloadID)
		require.NoError(t, webhookRepo.Insert(ctx, first))
		require.NoError(t, webhookRepo.Insert(ctx, second))

		// Act
		claimed, err := webhookRepo.ClaimPending(ctx, 10)

		// Assert
		require.NoError(t, err)
		require.Len(t, claimed, 2)
		require.Equal(t, first.ID, claimed[0].ID)
		require.Equal(t, second.ID, claimed[1].ID)

		// Claimed rows moved to processing, so a second dispatcher gets nothing.
		again, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, again)

		saved, err := webhookRepo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WebhookStatusProcessing, saved.Status)
	})

	t.Run("MarkSent - Delivery leaves the pending pool", func(t *testing.T) {
		// Arrange
		truncate()
		downloadID := setupDownload(t)
		delivery := newDelivery(downloadID)
		require.NoError(t, webhookRepo.Insert(ctx, delivery))

		// Act
		err := webhookRepo.MarkSent(ctx, delivery.ID)

		// Assert
		require.NoError(t, err)
		saved, err := webhookRepo.FindByID(ctx, delivery.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WebhookStatusSent, saved.Status)
		require.NotNil(t, saved.SentAt)

		pending, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, pending)
	})

	t.Run("MarkRetry - Spends one retry, returns to pending pool", func(t *testing.T) {
		// Arrange
		truncate()
		downloadID := setupDownload(t)
		delivery := newDelivery(downloadID)
		require.NoError(t, webhookRepo.Insert(ctx, delivery))

		claimed, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, claimed, 1)

		// Act
		err = webhookRepo.MarkRetry(ctx, delivery.ID, "connection refused")

		// Assert
		require.NoError(t, err)
		saved, err := webhookRepo.FindByID(ctx, delivery.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WebhookStatusPending, saved.Status)
		require.Equal(t, 1, saved.RetryCount)
		require.Equal(t, "connection refused", saved.LastError)

		reclaimed, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, reclaimed, 1)
	})

	t.Run("RequeueStale - Abandoned processing rows go back to pending", func(t *testing.T) {
		// Arrange
		truncate()
		downloadID := setupDownload(t)
		delivery := newDelivery(downloadID)
		require.NoError(t, webhookRepo.Insert(ctx, delivery))

		claimed, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, claimed, 1)

		// The dispatcher just claimed it, so a past cutoff leaves it alone.
		requeued, err := webhookRepo.RequeueStale(ctx, time.Now().Add(-time.Minute), 10)
		require.NoError(t, err)
		require.Zero(t, requeued)

		// Act
		requeued, err = webhookRepo.RequeueStale(ctx, time.Now().Add(time.Minute), 10)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 1, requeued)

		reclaimed, err := webhookRepo.ClaimPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, reclaimed, 1)
		require.Equal(t, delivery.ID, reclaimed[0].ID)
	})

	t.Run("MarkFailed - Terminal state with last error", func(t *testing.T) {
		// Arrange
		truncate()
		downloadID := setupDownload(t)
		delivery := newDelivery(downloadID)
		require.NoError(t, webhookRepo.Insert(ctx, delivery))

		// Act
		err := webhookRepo.MarkFailed(ctx, delivery.ID, "endpoint gone")

		// Assert
		require.NoError(t, err)
		saved, err := webhookRepo.FindByID(ctx, delivery.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WebhookStatusFailed, saved.Status)
		require.Equal(t, "endpoint gone", saved.LastError)
	})

	t.Run("FindByID - Not found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := webhookRepo.FindByID(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrDeliveryNotFound)
	})
}
