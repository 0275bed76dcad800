package main

import (
	"log/slog"

	"github.com/gemchat/gemchat/src/app"
	"github.com/gemchat/gemchat/src/config"
)

// buildApp loads configuration, applies CLI overrides, and wires the app.
func buildApp(cli *CLI, logger *slog.Logger) (*app.App, error) {
	path := cli.Config
	if path == "" {
		path = config.GetDefaultStoragePaths().ConfigPath
	}

	cfg, err := config.Load(nil, path)
	if err != nil {
		return nil, err
	}

	if cli.APIKey != "" {
		cfg.API.Key = cli.APIKey
	}
	if cli.Model != "" {
		cfg.API.Model = cli.Model
	}
	if cli.BaseURL != "" {
		cfg.API.BaseURL = cli.BaseURL
	}

	return app.New(cfg, logger)
}
