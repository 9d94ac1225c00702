package runstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/schema"
)

// Global store instance for main logic.
var (
	mu    sync.RWMutex
	store contract.RunStore
)

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attrib-runs.db"
	}
	dir := filepath.Join(home, ".attrib")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ".attrib-runs.db"
	}
	return filepath.Join(dir, "runs.db")
}

// InitStore initializes the global run store with the configured backend.
// An empty backend disables tracking.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	mu.Lock()
	defer mu.Unlock()

	if store != nil {
		return nil
	}
	if backend == "" {
		backend = schema.NoneBackend
	}
	s, err := NewRunStore(backend, connStr)
	if err != nil {
		return err
	}
	store = s
	return nil
}

// GetStore returns the global run store. It is a no-op store until
// InitStore succeeds.
func GetStore() contract.RunStore {
	mu.RLock()
	defer mu.RUnlock()
	if store == nil {
		return &RunStoreImpl{backend: schema.NoneBackend}
	}
	return store
}

// CloseStore closes the global run store if initialized.
func CloseStore() error {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
