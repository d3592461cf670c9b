package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOMLMissingFileReturnsDefaults(t *testing.T) {
	defaults := DefaultSettings()
	cfg, err := LoadTOML(filepath.Join(t.TempDir(), "absent.toml"), defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaults {
		t.Error("missing file should return the defaults pointer")
	}
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scrutiny.toml", `
mode = "paste"
debounce_ms = 150
paste_threshold = 90.5
`)

	cfg, err := LoadTOML(path, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "paste" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Debounce() != 150*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Debounce())
	}
	if cfg.PasteThreshold != 90.5 {
		t.Errorf("paste threshold = %v", cfg.PasteThreshold)
	}
	// Unset keys keep their defaults.
	if cfg.MaxEditDistance != 2 {
		t.Errorf("max edit distance = %d, want default 2", cfg.MaxEditDistance)
	}
}

func TestLoadTOMLRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"bad mode", `mode = "turbo"`},
		{"negative debounce", `debounce_ms = -5`},
		{"threshold out of range", `background_threshold = 140.0`},
		{"negative distance", `max_edit_distance = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "scrutiny.toml", tt.toml)
			if _, err := LoadTOML(path, DefaultSettings()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStoreSwapNotifiesListeners(t *testing.T) {
	s := NewStore(DefaultSettings())

	var gotOld, gotNew *Settings
	s.OnChange(func(old, new_ *Settings) {
		gotOld, gotNew = old, new_
	})

	updated := DefaultSettings()
	updated.Mode = "paste"
	s.Swap(updated)

	if s.Get() != updated {
		t.Error("Get did not return the swapped value")
	}
	if gotOld == nil || gotOld.Mode != "background" {
		t.Errorf("listener old = %+v", gotOld)
	}
	if gotNew == nil || gotNew.Mode != "paste" {
		t.Errorf("listener new = %+v", gotNew)
	}
}

func TestWatcherTriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scrutiny.toml", `mode = "background"`)

	reloaded := make(chan struct{}, 8)
	w, err := NewWatcher(path, func() {
		reloaded <- struct{}{}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`mode = "paste"`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestReloaderSwapsStore(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scrutiny.toml", `debounce_ms = 42`)

	store := NewStore(DefaultSettings())
	r := NewReloader(store, path, DefaultSettings())

	if err := r.Reload(); err != nil {
		t.Fatal(err)
	}
	if store.Get().DebounceMS != 42 {
		t.Errorf("debounce_ms = %d, want 42", store.Get().DebounceMS)
	}

	// A broken file leaves the previous config in place.
	writeFile(t, dir, "scrutiny.toml", `mode = "bogus"`)
	if err := r.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if store.Get().DebounceMS != 42 {
		t.Error("failed reload must not change the store")
	}
}
