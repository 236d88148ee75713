package worker

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

const workerColumns = `id, name, external_id, role, site, company_name, company_external_id, phone, enabled, pin, created_at`

func (s *PostgresStore) Create(ctx context.Context, w *Worker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (`+workerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		w.ID, w.Name, w.ExternalID, w.Role, w.Site, w.CompanyName,
		w.CompanyExternalID, w.Phone, w.Enabled, nullable(w.PIN), w.CreatedAt,
	)
	if isWorkerUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert worker: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Worker, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = $1`, id))
}

func (s *PostgresStore) FindByExternalID(ctx context.Context, externalID string) (*Worker, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE external_id = $1`, externalID))
}

func (s *PostgresStore) FindByPIN(ctx context.Context, pin string) (*Worker, error) {
	if pin == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE pin = $1`, pin))
}

func (s *PostgresStore) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workers SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return fmt.Errorf("update worker enabled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update worker enabled: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Worker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workerColumns+` FROM workers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var out []*Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Worker, error) {
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return w, err
}

func scanWorker(row rowScanner) (*Worker, error) {
	var w Worker
	var pin sql.NullString
	err := row.Scan(&w.ID, &w.Name, &w.ExternalID, &w.Role, &w.Site,
		&w.CompanyName, &w.CompanyExternalID, &w.Phone, &w.Enabled, &pin, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.PIN = pin.String
	return &w, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isWorkerUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
