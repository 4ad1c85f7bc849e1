package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the conversions table and its recency index if missing.
// Both statements run in one transaction.
func EnsureSchema(ctx context.Context, config *RepositoryConfig) error {
	table := config.Tables.Conversions
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                BIGSERIAL PRIMARY KEY,
				filename          TEXT NOT NULL,
				original_path     TEXT NOT NULL,
				converted_content TEXT NOT NULL,
				status            TEXT NOT NULL,
				file_size         BIGINT NOT NULL,
				conversion_time   DOUBLE PRECISION NOT NULL,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_created_at_idx ON %s (created_at DESC)`, table, table),
	}

	tm := NewTransactionManager(config.Pool, config.Logger)
	return tm.ExecTx(ctx, func(ctx context.Context) error {
		executor := GetExecutor(ctx, config.Pool)
		for _, stmt := range statements {
			if _, err := executor.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
		}
		return nil
	})
}
