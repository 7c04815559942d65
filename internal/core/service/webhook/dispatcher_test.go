package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fileflow/internal/adapters/repository"
	webhooksender "fileflow/internal/adapters/webhook"
	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/service/webhook"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testCfg = config.WebhookConfig{
	Enabled:   true,
	Interval:  time.Second,
	BatchSize: 50,
	Timeout:   10 * time.Second,
}

func pendingDelivery(retryCount int) domain.WebhookDelivery {
	assetID := uuid.New()
	return domain.WebhookDelivery{
		ID:           uuid.New(),
		DownloadID:   uuid.New(),
		URL:          "https://example.com/hooks/downloads",
		Status:       domain.WebhookStatusPending,
		ResultStatus: domain.DownloadStatusCompleted,
		FileAssetID:  &assetID,
		RetryCount:   retryCount,
	}
}

func TestDispatcher_RunCycle_SendsAndMarksSent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockWebhookDeliveryRepository()
	mockSender := webhooksender.NewMockSender()
	dispatcher := webhook.NewDispatcher(mockRepo, mockSender, testCfg, testLogger)

	delivery := pendingDelivery(0)

	mockRepo.On("ClaimPending", ctx, testCfg.BatchSize).Return([]domain.WebhookDelivery{delivery}, nil)
	mockSender.On("Send", mock.Anything, delivery.URL, delivery.Payload()).Return(nil)
	mockRepo.On("MarkSent", ctx, delivery.ID).Return(nil)

	// Act
	err := dispatcher.RunCycle(ctx)

	// Assert
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockSender.AssertExpectations(t)
}

func TestDispatcher_RunCycle_FailureWithinBudgetSchedulesRetry(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockWebhookDeliveryRepository()
	mockSender := webhooksender.NewMockSender()
	dispatcher := webhook.NewDispatcher(mockRepo, mockSender, testCfg, testLogger)

	delivery := pendingDelivery(domain.WebhookMaxRetries - 1)
	sendErr := errors.New("connection refused")

	mockRepo.On("ClaimPending", ctx, testCfg.BatchSize).Return([]domain.WebhookDelivery{delivery}, nil)
	mockSender.On("Send", mock.Anything, delivery.URL, delivery.Payload()).Return(sendErr)
	mockRepo.On("MarkRetry", ctx, delivery.ID, sendErr.Error()).Return(nil)

	// Act
	err := dispatcher.RunCycle(ctx)

	// Assert
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_RunCycle_ExhaustedBudgetMarksFailed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockWebhookDeliveryRepository()
	mockSender := webhooksender.NewMockSender()
	dispatcher := webhook.NewDispatcher(mockRepo, mockSender, testCfg, testLogger)

	delivery := pendingDelivery(domain.WebhookMaxRetries)
	sendErr := errors.New("connection refused")

	mockRepo.On("ClaimPending", ctx, testCfg.BatchSize).Return([]domain.WebhookDelivery{delivery}, nil)
	mockSender.On("Send", mock.Anything, delivery.URL, delivery.Payload()).Return(sendErr)
	mockRepo.On("MarkFailed", ctx, delivery.ID, sendErr.Error()).Return(nil)

	// Act
	err := dispatcher.RunCycle(ctx)

	// Assert
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "MarkRetry", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_RunCycle_EmptyBatchIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockWebhookDeliveryRepository()
	mockSender := webhooksender.NewMockSender()
	dispatcher := webhook.NewDispatcher(mockRepo, mockSender, testCfg, testLogger)

	mockRepo.On("ClaimPending", ctx, testCfg.BatchSize).Return([]domain.WebhookDelivery{}, nil)

	// Act
	err := dispatcher.RunCycle(ctx)

	// Assert
	require.NoError(t, err)
	mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
