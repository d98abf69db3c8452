// Package report delivers analysis summaries to a local logging endpoint.
// The sink is strictly best-effort: callers log failures and continue.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/service"
)

// DefaultEndpoint is the local logging server's ingest URL.
const DefaultEndpoint = "http://localhost:3001/api/log"

const requestTimeout = 5 * time.Second

// Client posts analysis summaries as JSON.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a reporting client for the given endpoint. An empty
// endpoint selects DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Send posts the summary, retrying transient failures with backoff. Errors
// are returned for the caller to log; they must never be propagated past
// the classification pipeline.
func (c *Client) Send(ctx context.Context, summary service.AnalysisSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	return common.WithRetry(ctx, func() error {
		return c.post(ctx, payload)
	}, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
	})
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post summary: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Client errors won't heal on retry; everything else might.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &common.RetryableError{
			Err:       fmt.Errorf("log endpoint returned status %d", resp.StatusCode),
			Retryable: false,
		}
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("log endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
