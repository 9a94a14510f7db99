package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/config"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository/postgres"
	"github.com/Lixing-Zhang/vintage-drops/pkg/db"
)

// OpenStorage returns the repositories of the configured driver. The
// in-memory driver is seeded with demo data; the returned *sql.DB is nil
// for it.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*repository.Repositories, *sql.DB, error) {
	if cfg.Driver != "postgres" {
		log.Info("using in-memory storage with demo data")
		return repository.NewInMemory(true, time.Now()), nil, nil
	}

	conn, err := db.NewPostgresConnection(ctx, db.PostgresConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to postgres")
	}

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		log.Info("database schema applied")
	}
	return postgres.New(conn), conn, nil
}
