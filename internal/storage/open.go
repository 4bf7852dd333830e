package storage

import (
	"fmt"
	"path/filepath"

	"github.com/agusx1211/promptarena/internal/config"
)

// OpenConfigured builds the Store described by sc. File storage lives in
// dataDir/data. owner partitions rows in the shared postgres table.
func OpenConfigured(sc config.StorageConfig, dataDir, owner string) (*Store, error) {
	switch sc.Backend {
	case "", config.BackendFile:
		return Open(NewFileBackend(filepath.Join(dataDir, "data"))), nil
	case config.BackendMemory:
		return Open(NewMemoryBackend()), nil
	case config.BackendPostgres:
		if sc.DatabaseURL == "" {
			return nil, fmt.Errorf("storage backend postgres needs storage.database_url")
		}
		pg, err := OpenPostgres(sc.DatabaseURL, owner)
		if err != nil {
			return nil, err
		}
		return Open(pg), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}
