// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API      APIConfig      `toml:"api"`
	Training TrainingConfig `toml:"training"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig maps review service settings.
type APIConfig struct {
	BaseURL *string `toml:"base-url"`
	Token   *string `toml:"token"`
	Timeout *string `toml:"timeout"`
}

// TrainingConfig maps training-related settings.
type TrainingConfig struct {
	Deck       *int64  `toml:"deck"`
	Limit      *int    `toml:"limit"`
	Shuffle    *bool   `toml:"shuffle"`
	FocusWeak  *bool   `toml:"focus-weak"`
	WeakWindow *int    `toml:"weak-window"`
	WeakTop    *int    `toml:"weak-top"`
	Gap        *string `toml:"gap"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by "tuicards config" when no config exists yet.
const Template = `# tuicards configuration

[api]
# base-url = "http://localhost:8787"
# token = ""
# timeout = "10s"

[training]
# deck = 1
# limit = 0
# shuffle = false
# focus-weak = false
# weak-window = 20
# weak-top = 10
# gap = "_____"

[log]
# level = "info"
# file = ""
`
