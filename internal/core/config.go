package core

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user-level settings read from ~/.config/huddle/config.toml.
type Config struct {
	// Name is the display name used when joining a workspace.
	Name string `toml:"name"`
	// Workspace is the default workspace database path.
	Workspace string `toml:"workspace"`
	// Notify enables desktop notifications for mentions.
	Notify bool `toml:"notify"`
	// LogFile is where diagnostic logs go; empty disables logging.
	LogFile string `toml:"log_file"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{Notify: true}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "huddle", "config.toml"), nil
}

// LoadConfig reads the user config file, returning defaults if absent.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the user config file, creating the directory if
// needed.
func SaveConfig(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
