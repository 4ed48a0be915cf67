package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/session"
	"github.com/arcanaoficial/arcana-server/internal/store"
	"github.com/arcanaoficial/arcana-server/internal/store/postgres"
	"github.com/arcanaoficial/arcana-server/internal/store/sqlite"
)

// StoreHandle wraps the content store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL, log.Logger)
		if err != nil {
			return nil, err
		}

		migrations := postgres.Migrations()
		if cfg.Store.MigrationsDir != "" {
			migrations = os.DirFS(cfg.Store.MigrationsDir)
		}
		if err := postgres.ApplyMigrations(ctx, db.DB(), migrations); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		log.Info("Postgres store ready", "migrations", migrationSource(cfg.Store.MigrationsDir))
		return &StoreHandle{Store: db}, nil

	default:
		db, err := sqlite.Open(cfg.Store.SQLitePath, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("SQLite store ready", "path", cfg.Store.SQLitePath)
		return &StoreHandle{Store: db}, nil
	}
}

func migrationSource(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

// SessionStoreHandle wraps the admin session store with shutdown capability.
type SessionStoreHandle struct {
	session.Store
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore uses Redis when REDIS_URL is set, an embedded Badger
// database otherwise.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Session.RedisURL != "" {
		st, err := session.NewRedisStore(cfg.Session.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("Session store ready", "backend", "redis")
		return &SessionStoreHandle{Store: st}, nil
	}

	st, err := session.OpenBadger(cfg.Session.Dir, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("Session store ready", "backend", "badger", "dir", cfg.Session.Dir)
	return &SessionStoreHandle{Store: st}, nil
}
