package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
	SlotDir      string
	ConfigPath   string
}

// GetDefaultStoragePaths returns default storage paths using XDG base
// directories: state data under XDG_STATE_HOME, config under XDG_CONFIG_HOME.
func GetDefaultStoragePaths() StoragePaths {
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, "gemchat", "chat.db"),
		SlotDir:      filepath.Join(xdg.StateHome, "gemchat", "slots"),
		ConfigPath:   filepath.Join(xdg.ConfigHome, "gemchat", "config.json"),
	}
}
