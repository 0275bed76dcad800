// Package genai is a minimal client for the Gemini generateContent endpoint.
package genai

import (
	"log/slog"
	"time"
)

// Part is one textual segment of a content turn.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one role-tagged turn of dialogue. Role is "user" or "model".
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig holds optional generation-tuning parameters.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// SafetySetting configures one safety filter category.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerateContentRequest is the request body for generateContent.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []SafetySetting   `json:"safetySettings,omitempty"`
}

// Candidate is one generated completion.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// ErrorDetail is the error descriptor the API may embed in a response body.
type ErrorDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// GenerateContentResponse is the response body for generateContent.
type GenerateContentResponse struct {
	Candidates []Candidate  `json:"candidates,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey     string        // Gemini API key
	Model      string        // Model name, e.g. "gemini-2.5-flash-preview-05-20"
	BaseURL    string        // Base URL for the API
	Timeout    time.Duration // HTTP timeout
	RetryCount int           // Number of attempts for failed requests
	RetryDelay time.Duration // Delay between retries
	Logger     *slog.Logger  // Logger for debugging
}
