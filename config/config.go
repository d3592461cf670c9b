// Package config provides hot-reloadable configuration for scrutiny servers:
// TOML files with defaults, an atomically swappable store, and fsnotify-based
// file watching so threshold and mode changes apply without a restart.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Validatable is an optional interface config structs can implement to
// reject bad values before they are swapped in.
type Validatable interface {
	Validate() error
}

// LoadTOML loads a TOML file into a struct of type T. A missing file is not
// an error; the provided defaults are returned instead.
func LoadTOML[T any](path string, defaults *T) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := new(T)
	if defaults != nil {
		*cfg = *defaults
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating config %s: %w", path, err)
		}
	}

	return cfg, nil
}
