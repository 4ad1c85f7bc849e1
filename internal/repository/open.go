// Package repository selects and opens the configured record store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"mdconv/internal/config"
	conversionRepo "mdconv/internal/domain/repositories/conversion"
	"mdconv/internal/repository/postgres"
	postgresConversion "mdconv/internal/repository/postgres/conversion"
	"mdconv/internal/repository/sqlstore"
)

// Open connects to the record store named by cfg.DBDriver and makes sure its
// schema exists. The returned close function releases the connection.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (conversionRepo.RecordRepository, func(), error) {
	tables := postgres.NewTableNames(cfg.TablePrefix)

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
			pool.Close()
			return nil, nil, err
		}

		logger.Info("record store connected", "driver", cfg.DBDriver, "table", tables.Conversions)
		return postgresConversion.NewRecordRepository(repoConfig), pool.Close, nil

	case config.DriverSQLite, config.DriverMySQL:
		dialect := sqlstore.SQLite
		if cfg.DBDriver == config.DriverMySQL {
			dialect = sqlstore.MySQL
		}

		store, err := sqlstore.Open(ctx, dialect, cfg.DatabaseURL, tables.Conversions, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}

		logger.Info("record store connected", "driver", cfg.DBDriver, "table", tables.Conversions)
		closeFn := func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close record store", "error", err)
			}
		}
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}
