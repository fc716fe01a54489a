package storage

import (
	"fmt"
	"path/filepath"
)

const sqliteFileName = "run.db"

// NewStore opens the backend for the run folder dir. The file backend is
// the default and writes the canonical params.json / brain<N>.json layout.
func NewStore(kind, dir string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir), nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(filepath.Join(dir, sqliteFileName))
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
