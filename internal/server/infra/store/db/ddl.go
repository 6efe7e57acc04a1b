package db

import (
	"context"
	"fmt"
)

func createTables(ctx context.Context, pool pool) error {
	sessionsTable := `
    CREATE TABLE IF NOT EXISTS hit_sessions (
        id TEXT PRIMARY KEY,
        state JSONB NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
    );`

	updatedIndex := `
    CREATE INDEX IF NOT EXISTS hit_sessions_updated_at_idx ON hit_sessions (updated_at);`

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("err starting transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, sessionsTable); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("err creating hit_sessions table: %w", err)
	}

	if _, err := tx.Exec(ctx, updatedIndex); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("err creating hit_sessions index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("err committing transaction: %w", err)
	}

	return nil
}
