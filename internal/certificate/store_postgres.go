package certificate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"previnet/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, record *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates (entity_id, worker_id, token, file_name, mime_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.EntityID, record.WorkerID, record.Token,
		record.FileName, record.MimeType, record.Content, record.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, entityID, workerID, token string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT entity_id, worker_id, token, file_name, mime_type, content, created_at
		FROM certificates
		WHERE entity_id = $1 AND worker_id = $2 AND token = $3`,
		entityID, workerID, token,
	)
	var record Record
	err := row.Scan(&record.EntityID, &record.WorkerID, &record.Token,
		&record.FileName, &record.MimeType, &record.Content, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return &record, nil
}

func (s *PostgresStore) ListByWorker(ctx context.Context, workerID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, worker_id, token, file_name, mime_type, content, created_at
		FROM certificates
		WHERE worker_id = $1
		ORDER BY created_at`,
		workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var record Record
		err := rows.Scan(&record.EntityID, &record.WorkerID, &record.Token,
			&record.FileName, &record.MimeType, &record.Content, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}
