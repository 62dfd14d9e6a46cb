// Package migrations applies the schema required by the storage layer. The
// statements are idempotent so Apply can run unconditionally at startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS account (
		account_id SERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_account_username ON account (username)`,
	`CREATE TABLE IF NOT EXISTS message (
		message_id SERIAL PRIMARY KEY,
		posted_by INTEGER NOT NULL REFERENCES account (account_id),
		message_text VARCHAR(255) NOT NULL,
		time_posted_epoch BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_message_posted_by ON message (posted_by)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
