package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fileflow/internal/core/port"
)

// maxBodyBytes caps how much of a remote file a single fetch will buffer
const maxBodyBytes = 5 << 30 // 5GB

// HTTPFetcher retrieves remote files over http(s)
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a source fetcher
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

var _ port.SourceFetcher = (*HTTPFetcher)(nil)

// Fetch downloads the URL and returns the body and its content type
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("source returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read source body: %w", err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, "", fmt.Errorf("source body exceeds %d bytes", int64(maxBodyBytes))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return body, contentType, nil
}
