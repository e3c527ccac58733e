package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	// SQLiteFileName is the database file used by the sqlite backend.
	SQLiteFileName = "devbot.db"
)

// Open returns the backend named by kind rooted at dataDir.
func Open(kind, dataDir string, logger *slog.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendJSON:
		return NewFileStore(dataDir, logger)
	case BackendSQLite:
		if dataDir == "" {
			return nil, fmt.Errorf("data directory is required")
		}
		return OpenSQLite(filepath.Join(dataDir, SQLiteFileName))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", kind, BackendJSON, BackendSQLite)
	}
}

// ValidBackend reports whether kind names a supported backend.
func ValidBackend(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case BackendJSON, BackendSQLite:
		return true
	}
	return false
}
