package config

import (
	"fmt"
	"time"
)

// Settings is the scrutiny server configuration, loaded from a TOML file.
//
//	mode = "background"
//	debounce_ms = 300
//	background_threshold = 70.0
//	paste_threshold = 85.0
//	max_edit_distance = 2
//	status_timeout_ms = 4000
type Settings struct {
	Mode                string  `toml:"mode"`
	DebounceMS          int     `toml:"debounce_ms"`
	BackgroundThreshold float64 `toml:"background_threshold"`
	PasteThreshold      float64 `toml:"paste_threshold"`
	MaxEditDistance     int     `toml:"max_edit_distance"`
	StatusTimeoutMS     int     `toml:"status_timeout_ms"`
	LogLevel            string  `toml:"log_level"`
}

// DefaultSettings returns the built-in defaults used when no config file
// exists or a key is omitted.
func DefaultSettings() *Settings {
	return &Settings{
		Mode:                "background",
		DebounceMS:          300,
		BackgroundThreshold: 70,
		PasteThreshold:      85,
		MaxEditDistance:     2,
		StatusTimeoutMS:     4000,
		LogLevel:            "info",
	}
}

// Validate implements Validatable.
func (s *Settings) Validate() error {
	switch s.Mode {
	case "background", "paste":
	default:
		return fmt.Errorf("mode must be \"background\" or \"paste\", got %q", s.Mode)
	}
	if s.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be non-negative, got %d", s.DebounceMS)
	}
	if s.BackgroundThreshold < 0 || s.BackgroundThreshold > 100 {
		return fmt.Errorf("background_threshold must be in [0,100], got %v", s.BackgroundThreshold)
	}
	if s.PasteThreshold < 0 || s.PasteThreshold > 100 {
		return fmt.Errorf("paste_threshold must be in [0,100], got %v", s.PasteThreshold)
	}
	if s.MaxEditDistance < 0 {
		return fmt.Errorf("max_edit_distance must be non-negative, got %d", s.MaxEditDistance)
	}
	return nil
}

// Debounce returns the debounce delay as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// StatusTimeout returns how long transient status messages stay visible.
func (s *Settings) StatusTimeout() time.Duration {
	return time.Duration(s.StatusTimeoutMS) * time.Millisecond
}
