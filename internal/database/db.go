package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"

	"github.com/JarviousX/yogitrack-studio-management/internal/config"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
	"github.com/JarviousX/yogitrack-studio-management/internal/store/memory"
	"github.com/JarviousX/yogitrack-studio-management/internal/store/mongo"
	"github.com/JarviousX/yogitrack-studio-management/internal/store/postgres"
)

const pingTimeout = 5 * time.Second

// Open connects the configured backend, waits for it to answer a ping and
// applies its migrations.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	st, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(ctx, st, cfg.Retry, log); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("database: %s unreachable: %w", cfg.Store.Driver, err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	log.Info("store ready", slog.String("driver", cfg.Store.Driver))
	return st, nil
}

func connect(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		return mongo.New(client, cfg.Mongo.Database, cfg.Mongo.Transactions), nil
	case config.DriverPostgres:
		db, err := sqlx.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		return postgres.New(db), nil
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.Store.Driver)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingWithRetry(ctx context.Context, p pinger, rc config.RetryConfig, log *slog.Logger) error {
	return retry.Do(
		func() error {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return p.Ping(pctx)
		},
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("store ping failed, retrying",
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	)
}
