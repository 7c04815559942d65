package domain_test

import (
	"testing"
	"time"

	"fileflow/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Delay(t *testing.T) {
	backoff := domain.Backoff{Base: time.Minute, Max: 10 * time.Minute}

	assert.Equal(t, time.Minute, backoff.Delay(0))
	assert.Equal(t, 2*time.Minute, backoff.Delay(1))
	assert.Equal(t, 4*time.Minute, backoff.Delay(2))
	assert.Equal(t, 8*time.Minute, backoff.Delay(3))
	assert.Equal(t, 10*time.Minute, backoff.Delay(4))
	assert.Equal(t, 10*time.Minute, backoff.Delay(20))
}

func TestBackoff_Delay_NegativeAttempt(t *testing.T) {
	backoff := domain.Backoff{Base: time.Second, Max: time.Minute}

	assert.Equal(t, time.Second, backoff.Delay(-1))
}

func TestOperationState_IsTerminal(t *testing.T) {
	assert.False(t, domain.OperationStatePending.IsTerminal())
	assert.False(t, domain.OperationStateInProgress.IsTerminal())
	assert.False(t, domain.OperationStateFailed.IsTerminal())
	assert.True(t, domain.OperationStateCompleted.IsTerminal())
	assert.True(t, domain.OperationStateTimeout.IsTerminal())
}

func TestDownloadStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.DownloadStatusPending.IsTerminal())
	assert.False(t, domain.DownloadStatusInProgress.IsTerminal())
	assert.True(t, domain.DownloadStatusCompleted.IsTerminal())
	assert.True(t, domain.DownloadStatusFailed.IsTerminal())
}
