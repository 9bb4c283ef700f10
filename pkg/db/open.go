package db

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend names accepted by Open
const (
	BackendAuto     = "auto"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config selects and configures a Store backend
type Config struct {
	Backend     string
	DatabaseURL string
	SupabaseURL string
	SupabaseKey string
	MongoURI    string
	MongoDB     string
	Table       string
}

// Resolve returns the backend Open will use. Auto picks the first configured
// of postgres, supabase and mongo, else memory.
func (c Config) Resolve() string {
	switch c.Backend {
	case "", BackendAuto:
	default:
		return c.Backend
	}
	switch {
	case c.DatabaseURL != "":
		return BackendPostgres
	case c.SupabaseURL != "" && c.SupabaseKey != "":
		return BackendSupabase
	case c.MongoURI != "":
		return BackendMongo
	default:
		return BackendMemory
	}
}

// Open connects to the configured backend
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	backend := cfg.Resolve()
	logger.Info("opening article store", "backend", backend, "table", tableName(cfg.Table))

	switch backend {
	case BackendPostgres:
		return NewPostgresStore(ctx, PostgresConfig{DSN: cfg.DatabaseURL, Table: cfg.Table})
	case BackendSupabase:
		return NewSupabaseStore(SupabaseConfig{SupabaseURL: cfg.SupabaseURL, SupabaseKey: cfg.SupabaseKey, Table: cfg.Table})
	case BackendMongo:
		dbName := cfg.MongoDB
		if dbName == "" {
			dbName = "hindinews"
		}
		return NewMongoStore(ctx, cfg.MongoURI, dbName, cfg.Table)
	case BackendMemory:
		logger.Warn("no database configured, articles are kept in memory only")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
