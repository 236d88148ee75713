// Package postgres opens the database handle and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS signable_entities (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		version    BIGINT NOT NULL,
		body       JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS signable_entities_kind_idx ON signable_entities (kind)`,
	`CREATE INDEX IF NOT EXISTS signable_entities_assignments_idx
		ON signable_entities USING GIN ((body->'assignments') jsonb_path_ops)`,
	`CREATE TABLE IF NOT EXISTS certificates (
		entity_id  TEXT NOT NULL,
		worker_id  TEXT NOT NULL,
		token      TEXT NOT NULL,
		file_name  TEXT NOT NULL,
		mime_type  TEXT NOT NULL,
		content    BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (entity_id, worker_id, token)
	)`,
	`CREATE INDEX IF NOT EXISTS certificates_worker_idx ON certificates (worker_id)`,
	`CREATE TABLE IF NOT EXISTS workers (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		external_id         TEXT NOT NULL UNIQUE,
		role                TEXT NOT NULL DEFAULT '',
		site                TEXT NOT NULL DEFAULT '',
		company_name        TEXT NOT NULL DEFAULT '',
		company_external_id TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL DEFAULT '',
		enabled             BOOLEAN NOT NULL DEFAULT FALSE,
		pin                 TEXT UNIQUE,
		created_at          TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema. Statements are idempotent so it runs at every
// startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
