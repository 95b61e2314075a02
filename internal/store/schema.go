package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS extractions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		created_at  DATETIME NOT NULL,
		source      TEXT NOT NULL,
		amount      TEXT NOT NULL,
		type        TEXT NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL,
		date        TEXT NOT NULL,
		raw_text    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extractions_user_created
		ON extractions (user_id, created_at DESC)`,
}

// InitializeSchema creates tables and indexes if they do not exist.
func InitializeSchema(ctx context.Context, conn *Connection) error {
	return conn.Transaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute schema statement: %w", err)
			}
		}
		return nil
	})
}
