package storage

import (
	"fmt"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// New creates the storage backend selected by cfg.Backend.
func New(cfg *config.LedgerConfig) (ledger.Storage, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return NewSQLiteStorage(cfg.SQLite)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
