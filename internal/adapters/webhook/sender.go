package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"
)

// Sender POSTs webhook payloads as JSON
type Sender struct {
	client *http.Client
	logger *slog.Logger
}

// NewSender creates a webhook sender
func NewSender(timeout time.Duration, logger *slog.Logger) *Sender {
	return &Sender{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

var _ port.WebhookSender = (*Sender)(nil)

// Send delivers one payload. Any non-2xx response is a failed delivery.
func (s *Sender) Send(ctx context.Context, url string, payload domain.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}

	s.logger.Info("webhook delivered", "url", url, "status", resp.StatusCode)
	return nil
}
