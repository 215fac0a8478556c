package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config selects and addresses a storage backend.
type Config struct {
	// Driver is one of "sqlite", "postgres" or "mongo". Empty means sqlite.
	Driver string `mapstructure:"driver"`

	// DSN is a file path or SQLite URI, a postgres connection string, or a
	// mongodb:// URI depending on Driver.
	DSN string `mapstructure:"dsn"`

	// MongoDatabase names the database used by the mongo backend.
	MongoDatabase string `mapstructure:"mongo_database"`
}

// Open connects to the configured backend and makes sure its tables or
// collections exist.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			dsn = p
		}
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case DriverMongo:
		return OpenMongo(ctx, cfg.DSN, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. QUIZLAB_DB environment variable
// 2. $XDG_DATA_HOME/quizlab/quizlab.db
// 3. ~/.local/share/quizlab/quizlab.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZLAB_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizlab", "quizlab.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
