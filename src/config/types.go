// Package config holds the application configuration: endpoint credentials,
// generation tuning, storage backend selection, and logging.
package config

import "time"

// Config represents the complete configuration for gemchat
type Config struct {
	// API configuration
	API APIConfig `json:"api"`

	// Generation tuning parameters passed through on every request
	Generation GenerationConfig `json:"generation"`

	// Safety filter configuration
	Safety []SafetySetting `json:"safety,omitempty" validate:"dive"`

	// Prompts seeded into empty conversations
	Prompts PromptsConfig `json:"prompts"`

	// Storage backend configuration
	Storage StorageConfig `json:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// APIConfig defines the remote model endpoint
type APIConfig struct {
	// Key is the API credential. Falls back to the GEMINI_API_KEY
	// environment variable when empty.
	Key string `json:"key,omitempty"`

	// Model is the model name
	Model string `json:"model,omitempty"`

	// BaseURL overrides the default endpoint base
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Timeout is the HTTP timeout
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries is the number of attempts for failed requests
	MaxRetries int `json:"max_retries,omitempty" validate:"gte=0,lte=10"`
}

// GenerationConfig defines optional generation-tuning parameters
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP            *float64 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	TopK            *int     `json:"top_k,omitempty" validate:"omitempty,gte=1"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty" validate:"omitempty,gte=1"`
}

// SafetySetting configures one safety filter category
type SafetySetting struct {
	Category  string `json:"category" validate:"required"`
	Threshold string `json:"threshold" validate:"required"`
}

// PromptsConfig defines seed prompts for empty conversations
type PromptsConfig struct {
	System string `json:"system,omitempty"`
	Setup  string `json:"setup,omitempty"`
}

// StorageConfig selects the durable slot backend
type StorageConfig struct {
	// Backend is "sqlite" or "file"
	Backend string `json:"backend,omitempty" validate:"omitempty,storage_backend"`

	// Path is the database file (sqlite) or slot directory (file). Defaults
	// to an XDG state location.
	Path string `json:"path,omitempty"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"omitempty,log_level"`
}
