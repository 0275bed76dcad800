package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash-preview-05-20"
	defaultTimeout = 30 * time.Second
)

// Client is the Gemini API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Gemini API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "genai_client")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// GenerateContent sends the ordered turn history to the generateContent
// endpoint and returns the decoded response. Cancelling ctx aborts the call.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	logger := c.logger.With("method", "GenerateContent", "model", c.config.Model)
	logger.Debug("sending generate content request", "turns", len(req.Contents))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.config.BaseURL, c.config.Model, url.QueryEscape(c.config.APIKey))

	resp, err := c.doRequestWithRetry(ctx, endpoint, body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var result GenerateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	logger.Debug("generate content successful", "candidates", len(result.Candidates))
	return &result, nil
}

// doRequestWithRetry performs the HTTP request, retrying server errors with
// a linear backoff. Client errors (4xx) and context cancellation are never
// retried.
func (c *Client) doRequestWithRetry(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry")

	for i := 0; i < c.config.RetryCount; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logger.Debug("request attempt failed", "attempt", i+1, "error", err)
		} else {
			// Retry server errors, but surface the final response so the
			// caller sees the body text.
			if resp.StatusCode < 500 || i == c.config.RetryCount-1 {
				return resp, nil
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			logger.Debug("server error, retrying", "attempt", i+1, "status_code", resp.StatusCode)
		}

		if i == c.config.RetryCount-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.RetryDelay * time.Duration(i+1)):
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.RetryCount, lastErr)
}
