package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Load reads the configuration file at path, merges it over the defaults,
// applies the GEMINI_API_KEY environment fallback, and validates the result.
// A missing file yields the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	config := DefaultConfig()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Missing config file is fine, defaults apply.
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if config.API.Key == "" {
		config.API.Key = os.Getenv("GEMINI_API_KEY")
	}

	if err := NewValidator().Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
