// Package backend is the HTTP client for the external analysis/move
// service. The backend owns filesystem scanning, AI categorization, and the
// physical moves; this client only starts work and reads results.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"log/slog"
	"strings"
	"time"

	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/service"
)

// Client talks to the tidyflow analysis backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryOpts  service.RetryOptions
}

// analyzeRequest is the wire form of the analyze call.
type analyzeRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// healthResponse is the wire form of the readiness probe.
type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Ready  bool   `json:"ready"`
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: backend URL", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: backend URL %q is not a valid URL", common.ErrInvalidConfig, baseURL)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// No overall timeout: the analyze response streams for the
			// whole scan. Cancellation comes from the request context.
		},
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
		},
	}, nil
}

// StartAnalysis asks the backend to analyze a directory and returns the raw
// event stream. Only the initial connection is retried; once the stream is
// open the consumer owns it and the caller must close it.
func (c *Client) StartAnalysis(ctx context.Context, path string, recursive bool) (io.ReadCloser, error) {
	body, err := json.Marshal(analyzeRequest{Path: path, Recursive: recursive})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analyze request: %w", err)
	}

	var stream io.ReadCloser
	err = common.WithRetry(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/analyze/stream", bytes.NewReader(body))
		if reqErr != nil {
			return &common.RetryableError{Err: reqErr, Retryable: false}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		slog.Debug("Starting analysis", "path", path, "recursive", recursive)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("%w: %v", common.ErrBackendUnavailable, doErr)
		}
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			// Client errors won't improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return &common.RetryableError{
					Err:       fmt.Errorf("backend rejected analyze request: %d - %s", resp.StatusCode, string(respBody)),
					Retryable: false,
				}
			}
			return fmt.Errorf("backend error: %d - %s", resp.StatusCode, string(respBody))
		}

		stream = resp.Body
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	return stream, nil
}

// MoveFiles dispatches one move batch and waits for the synchronous result.
// It is never retried: the caller decides whether to re-run a failed batch.
func (c *Client) MoveFiles(ctx context.Context, moveReq service.MoveRequest) (*service.MoveResponse, error) {
	body, err := json.Marshal(moveReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode move request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/operations/move", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create move request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Dispatching move batch", "items", len(moveReq.Items), "base_path", moveReq.BasePath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend move error: %d - %s", resp.StatusCode, string(respBody))
	}

	var moveResp service.MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&moveResp); err != nil {
		return nil, fmt.Errorf("failed to decode move response: %w", err)
	}

	return &moveResp, nil
}

// Health probes the backend's readiness, including its AI engine.
func (c *Client) Health(ctx context.Context) (ready bool, detail string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/analysis/health", nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", common.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, "", fmt.Errorf("backend health error: %d - %s", resp.StatusCode, string(respBody))
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, "", fmt.Errorf("failed to decode health response: %w", err)
	}

	detail = health.Status
	if health.Model != "" {
		detail = fmt.Sprintf("%s (%s)", health.Status, health.Model)
	}
	return health.Ready, detail, nil
}
