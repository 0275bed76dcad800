package genai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey indicates the API key is missing.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrNoModel indicates no model name was configured.
	ErrNoModel = errors.New("model name is required")
)

// APIError represents a non-2xx response from the endpoint. Message carries
// the response body text, or a synthesized "request failed with status"
// message when the body is empty.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// IsRetryable returns true if the error is worth retrying.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(statusCode int, body []byte) *APIError {
	msg := string(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
