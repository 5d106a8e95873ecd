package store

import (
	"context"
	"fmt"
	"path/filepath"
)

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.CacheBackend {
	case BackendSQLite:
		s, err := OpenSQLite(ctx, filepath.Join(cfg.CacheDir, SQLiteFileName))
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return s, nil
	default:
		return NewFileStore(cfg.CacheDir), nil
	}
}

// Paths lists the files backing the configured cache.
func Paths(cfg *Config) []string {
	if cfg.CacheBackend == BackendSQLite {
		return []string{filepath.Join(cfg.CacheDir, SQLiteFileName)}
	}
	fs := &FileStore{dir: cfg.CacheDir}
	return []string{fs.Path(EventsDoc), fs.Path(TasksDoc)}
}
