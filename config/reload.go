package config

// Reloader ties a file path to a store so both the file watcher and LSP
// workspace/didChangeConfiguration notifications run the same reload path.
type Reloader[T any] struct {
	store    *Store[T]
	filePath string
	defaults *T
}

// NewReloader creates a reloader for the given store and file.
func NewReloader[T any](store *Store[T], filePath string, defaults *T) *Reloader[T] {
	return &Reloader[T]{
		store:    store,
		filePath: filePath,
		defaults: defaults,
	}
}

// Reload re-reads the TOML file and swaps the result into the store. On
// error the previous config stays in effect.
func (r *Reloader[T]) Reload() error {
	cfg, err := LoadTOML[T](r.filePath, r.defaults)
	if err != nil {
		return err
	}
	r.store.Swap(cfg)
	return nil
}
