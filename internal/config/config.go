// Package config loads the optional tblx application config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/pkg/settings"
)

// FileName is the config file looked up under the XDG config directory.
const FileName = "config.yaml"

// ErrNotFound is returned by Load when an explicitly named file is missing.
var ErrNotFound = errors.New("config file not found")

// Config is the on-disk application config. Zero values mean "not set".
type Config struct {
	// Store is the preference store URI (memory://, file:///dir, bolt:///file.db).
	Store string `yaml:"store,omitempty"`
	// PageSize is the default interactive page size. Nil keeps the built-in default.
	PageSize *int `yaml:"pageSize,omitempty"`
	// NoColor disables styled output.
	NoColor bool `yaml:"noColor,omitempty"`
	// StorageKeyPrefix is prepended to every --storage-key, letting several
	// users or environments share one store.
	StorageKeyPrefix string `yaml:"storageKeyPrefix,omitempty"`
}

// ResolvePath returns explicit if set, otherwise $XDG_CONFIG_HOME/tblx/config.yaml
// or ~/.config/tblx/config.yaml when that file exists. It returns "" when no
// config file applies.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, FileName)
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, FileName)
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the config at path. An empty path yields an empty Config.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.PageSize != nil && *cfg.PageSize < 0 {
		return cfg, fmt.Errorf("%s: pageSize must be non-negative, got %d", path, *cfg.PageSize)
	}
	return cfg, nil
}

// Apply copies set values onto run. Callers apply flags afterwards so they win.
func (c Config) Apply(run *settings.Run) {
	if c.Store != "" {
		run.StoreURI = c.Store
	}
	if c.PageSize != nil {
		run.PageSize = *c.PageSize
	}
	if c.NoColor {
		run.NoColor = true
	}
}

// StorageKey applies the configured prefix to key. Empty keys stay empty so
// persistence remains off.
func (c Config) StorageKey(key string) string {
	if key == "" || c.StorageKeyPrefix == "" {
		return key
	}
	return c.StorageKeyPrefix + key
}
