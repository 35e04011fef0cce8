// Package config loads commenter's settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Dir returns the commenter config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/commenter if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "commenter"), nil
}

// DefaultPath returns {Dir()}/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Config holds the settings. Paths may start with "~/".
type Config struct {
	BuildConstraints  string   `toml:"build-constraints"`
	IgnoreFile        string   `toml:"ignore-file"`
	PantryDB          string   `toml:"pantry-db"`
	StackageSnapshots string   `toml:"stackage-snapshots"`
	Curator           string   `toml:"curator"`
	Stack             string   `toml:"stack"`
	LatestCommand     []string `toml:"latest-command"`
	MaxRounds         int      `toml:"max-rounds"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		BuildConstraints: "build-constraints.yaml",
		PantryDB:         "~/.stack/pantry/pantry.sqlite3",
		Curator:          "curator",
		Stack:            "stack",
		MaxRounds:        50,
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error. Unknown keys are rejected so typos don't go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("max-rounds") && cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("%s: max-rounds must be positive, got %d", path, cfg.MaxRounds)
	}
	if meta.IsDefined("build-constraints") && strings.TrimSpace(cfg.BuildConstraints) == "" {
		return nil, fmt.Errorf("%s: build-constraints must not be empty", path)
	}
	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
