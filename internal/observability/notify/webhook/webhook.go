// Package webhook delivers status change notifications to an HTTP
// endpoint, typically the bridge that fans out to email and WhatsApp.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xdrive-logistics/dispatch/internal/observability/notify"
)

// Config captures the subset of webhook behaviour we need.
type Config struct {
	URL        string
	AuthToken  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client posts status changes to a webhook endpoint.
type Client struct {
	url        string
	authToken  string
	retryLimit int
	client     *http.Client
}

// NewClient builds a webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:        url,
		authToken:  cfg.AuthToken,
		retryLimit: retries,
		client:     hc,
	}, nil
}

type payload struct {
	JobID      string `json:"job_id"`
	Ref        string `json:"ref"`
	CompanyID  string `json:"company_id"`
	NewStatus  string `json:"new_status"`
	OccurredAt string `json:"occurred_at"`
}

// SendStatusChange implements notify.Sink.
func (c *Client) SendStatusChange(ctx context.Context, change notify.StatusChange) error {
	body, err := json.Marshal(payload{
		JobID:      change.JobID,
		Ref:        change.Ref,
		CompanyID:  change.CompanyID,
		NewStatus:  change.NewStatus,
		OccurredAt: change.OccurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryLimit; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
