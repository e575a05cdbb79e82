package util

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// MaxDepth bounds evaluator recursion; 0 means unlimited.
	MaxDepth int `toml:"max_depth"`

	Image ImageConfiguration `toml:"image"`
}

// ImageConfiguration selects where global bindings are saved. An empty
// Driver disables images.
type ImageConfiguration struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
	Name   string `toml:"name"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Version:  "dev",
		LogLevel: "error",
		MaxDepth: 10000,
		Image: ImageConfiguration{
			Name: "default",
		},
	}
}

// LoadConfiguration reads a TOML file over the defaults. A missing file
// yields the defaults.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfiguration(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to load configuration %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown configuration key %s in %s", undecoded[0], path)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("max_depth must not be negative, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}
