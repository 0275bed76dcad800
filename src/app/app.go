// Package app wires the store, client, and controller together.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gemchat/gemchat/src/chatstore"
	"github.com/gemchat/gemchat/src/config"
	"github.com/gemchat/gemchat/src/controller"
	"github.com/gemchat/gemchat/src/genai"
	"github.com/gemchat/gemchat/src/kvstore"
)

// App holds the initialized services.
type App struct {
	Store      *chatstore.Store
	Client     *genai.Client
	Controller *controller.Controller
	Logger     *slog.Logger

	backend io.Closer
}

// New builds the application from configuration: opens the configured slot
// backend, rehydrates the store from it, and constructs the client and
// controller.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	slot, backend, err := openSlot(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := chatstore.New(slot, logger)

	client := genai.NewClient(genai.Config{
		APIKey:     cfg.API.Key,
		Model:      cfg.API.Model,
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		RetryCount: cfg.API.MaxRetries,
		Logger:     logger,
	})

	ctrl := controller.New(store, client, controller.Options{
		SystemPrompt: cfg.Prompts.System,
		SetupPrompt:  cfg.Prompts.Setup,
		Generation:   generationConfig(cfg),
		Safety:       safetySettings(cfg),
		Logger:       logger,
	})

	return &App{
		Store:      store,
		Client:     client,
		Controller: ctrl,
		Logger:     logger,
		backend:    backend,
	}, nil
}

// Close releases the storage backend and subscriber channels.
func (a *App) Close() error {
	a.Store.Close()
	if a.backend != nil {
		return a.backend.Close()
	}
	return nil
}

func openSlot(cfg *config.Config) (chatstore.Slot, io.Closer, error) {
	paths := config.GetDefaultStoragePaths()

	switch cfg.Storage.Backend {
	case "", "sqlite":
		path := cfg.Storage.Path
		if path == "" {
			path = paths.DatabasePath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		db, err := kvstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db.Slot(chatstore.SlotName), db, nil

	case "file":
		dir := cfg.Storage.Path
		if dir == "" {
			dir = paths.SlotDir
		}
		fs, err := kvstore.NewFileStore(nil, dir)
		if err != nil {
			return nil, nil, err
		}
		return fs.Slot(chatstore.SlotName), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func generationConfig(cfg *config.Config) *genai.GenerationConfig {
	g := cfg.Generation
	if g.Temperature == nil && g.TopP == nil && g.TopK == nil && g.MaxOutputTokens == nil {
		return nil
	}
	return &genai.GenerationConfig{
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		TopK:            g.TopK,
		MaxOutputTokens: g.MaxOutputTokens,
	}
}

func safetySettings(cfg *config.Config) []genai.SafetySetting {
	if len(cfg.Safety) == 0 {
		return nil
	}
	out := make([]genai.SafetySetting, 0, len(cfg.Safety))
	for _, s := range cfg.Safety {
		out = append(out, genai.SafetySetting{Category: s.Category, Threshold: s.Threshold})
	}
	return out
}
