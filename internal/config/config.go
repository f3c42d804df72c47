// Package config loads the devsel configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/roach88/devsel/internal/strategy"
)

// Config holds the settings shared by every devsel command. Command-line
// flags override these values.
type Config struct {
	// Catalog is a CUE catalog file. Empty means the default catalog.
	Catalog string
	// Journal is a SQLite journal file. Empty means an in-memory journal.
	Journal  string
	Strategy string
	LogLevel string
	Format   string
}

const (
	DefaultPath     = "~/.config/devsel/config.toml"
	DefaultLogLevel = "info"
	DefaultFormat   = "text"
)

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	formats   = []string{"text", "json"}
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Strategy: strategy.DefaultKind,
		LogLevel: DefaultLogLevel,
		Format:   DefaultFormat,
	}
}

// Load parses the config at path, or at DefaultPath when path is empty.
// A missing file yields Default().
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Catalog  string `toml:"catalog"`
		Journal  string `toml:"journal"`
		Strategy string `toml:"strategy"`
		LogLevel string `toml:"log_level"`
		Format   string `toml:"format"`
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	base := filepath.Dir(resolved)
	if cfg.Catalog, err = resolveRelative(base, raw.Catalog); err != nil {
		return Config{}, fmt.Errorf("catalog: %w", err)
	}
	if cfg.Journal, err = resolveRelative(base, raw.Journal); err != nil {
		return Config{}, fmt.Errorf("journal: %w", err)
	}
	if v := strings.TrimSpace(raw.Strategy); v != "" {
		cfg.Strategy = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Format)); v != "" {
		cfg.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", resolved, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(strategy.Kinds(), c.Strategy) {
		errs = append(errs, fmt.Errorf("strategy %q is not one of %v", c.Strategy, strategy.Kinds()))
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q is not one of %v", c.LogLevel, logLevels))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("format %q is not one of %v", c.Format, formats))
	}
	return errors.Join(errs...)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath)
	}
	return expandPath(path)
}

// resolveRelative expands ~ and makes relative paths relative to base.
// An empty value stays empty.
func resolveRelative(base, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if !strings.HasPrefix(trimmed, "~") && !filepath.IsAbs(trimmed) {
		trimmed = filepath.Join(base, trimmed)
	}
	return expandPath(trimmed)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
