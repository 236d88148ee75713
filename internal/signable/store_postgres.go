package signable

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"previnet/pkg/platform/sentinel"
)

// PostgresStore persists entities in PostgreSQL. The document body (details,
// challenge, attachment, assignments) lives in a JSONB column; only the fields
// we query on are real columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed entity store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type entityRow struct {
	ID        string
	Kind      string
	CreatedAt time.Time
	Version   int64
	Body      []byte
}

func (s *PostgresStore) Put(ctx context.Context, entity *Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	if entity.Version == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO signable_entities (id, kind, created_at, version, body)
			VALUES ($1, $2, $3, 1, $4)
		`, entity.ID, string(entity.Kind), entity.CreatedAt, body)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert entity %s: %w", entity.ID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert entity: %w", err)
		}
		entity.Version = 1
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE signable_entities
		SET body = $1, version = version + 1
		WHERE id = $2 AND version = $3
	`, body, entity.ID, entity.Version)
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	if affected == 0 {
		// Either the row vanished or someone else won the version race.
		return fmt.Errorf("update entity %s: %w", entity.ID, sentinel.ErrConflict)
	}
	entity.Version++
	// Keep the stored body's version in step with the column.
	return s.rewriteBodyVersion(ctx, entity)
}

// rewriteBodyVersion persists the incremented version inside the JSONB body so
// a later Get returns what Put reported.
func (s *PostgresStore) rewriteBodyVersion(ctx context.Context, entity *Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE signable_entities SET body = $1 WHERE id = $2 AND version = $3
	`, body, entity.ID, entity.Version)
	if err != nil {
		return fmt.Errorf("rewrite entity body: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Entity, error) {
	var row entityRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, created_at, version, body
		FROM signable_entities WHERE id = $1
	`, id).Scan(&row.ID, &row.Kind, &row.CreatedAt, &row.Version, &row.Body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return decodeEntity(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entity, error) {
	return s.query(ctx, `
		SELECT id, kind, created_at, version, body
		FROM signable_entities ORDER BY created_at
	`)
}

func (s *PostgresStore) ListByWorker(ctx context.Context, workerID string) ([]*Entity, error) {
	return s.query(ctx, `
		SELECT id, kind, created_at, version, body
		FROM signable_entities
		WHERE body->'assignments' @> $1
		ORDER BY created_at
	`, fmt.Sprintf(`[{"workerId":%q}]`, workerID))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Entity, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []*Entity
	for rows.Next() {
		var row entityRow
		if err := rows.Scan(&row.ID, &row.Kind, &row.CreatedAt, &row.Version, &row.Body); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entity, err := decodeEntity(row)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

func decodeEntity(row entityRow) (*Entity, error) {
	var entity Entity
	if err := json.Unmarshal(row.Body, &entity); err != nil {
		return nil, fmt.Errorf("decode entity %s: %w", row.ID, err)
	}
	entity.Version = row.Version
	return &entity, nil
}
