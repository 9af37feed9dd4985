package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/raglab/docqa/internal/core/domain"
)

// Registry is the optional persistent ingestion registry, selected when
// a postgres DSN is configured. It implements the same contract as the
// in-memory registry: one record per case-insensitive file name, last
// writer wins.
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *Registry) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026053001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS ingestion_records (
	file_name_key TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	document_id TEXT NOT NULL,
	index_name TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ingestion_records_document_id ON ingestion_records(document_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *Registry) Put(ctx context.Context, fileName, documentID, index string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingestion_records (file_name_key, file_name, document_id, index_name, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (file_name_key) DO UPDATE
SET file_name = EXCLUDED.file_name,
    document_id = EXCLUDED.document_id,
    index_name = EXCLUDED.index_name,
    updated_at = EXCLUDED.updated_at
`, strings.ToLower(fileName), fileName, documentID, index, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert ingestion record: %w", err)
	}
	return nil
}

func (r *Registry) ResolveFileName(ctx context.Context, documentID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT file_name FROM ingestion_records WHERE document_id = $1 LIMIT 1
`, documentID)

	var fileName string
	if err := row.Scan(&fileName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UnknownFileName, nil
		}
		return domain.UnknownFileName, fmt.Errorf("scan ingestion record: %w", err)
	}
	return fileName, nil
}

func (r *Registry) RemoveAllFor(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM ingestion_records WHERE document_id = $1
`, documentID)
	if err != nil {
		return fmt.Errorf("delete ingestion records: %w", err)
	}
	return nil
}

func (r *Registry) Snapshot(ctx context.Context) ([]domain.IngestionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT file_name, document_id, index_name FROM ingestion_records ORDER BY file_name
`)
	if err != nil {
		return nil, fmt.Errorf("query ingestion records: %w", err)
	}
	defer rows.Close()

	var out []domain.IngestionRecord
	for rows.Next() {
		var record domain.IngestionRecord
		if err := rows.Scan(&record.FileName, &record.DocumentID, &record.Index); err != nil {
			return nil, fmt.Errorf("scan ingestion record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingestion records: %w", err)
	}
	return out, nil
}
