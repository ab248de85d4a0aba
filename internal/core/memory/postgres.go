package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agenthands/finsage/internal/core/model"
	_ "github.com/lib/pq"
)

const createMemoryTable = `
CREATE TABLE IF NOT EXISTS memory_entries (
	id         BIGSERIAL PRIMARY KEY,
	key        TEXT NOT NULL,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS memory_entries_key_id_idx ON memory_entries (key, id);
`

// PostgresStore is an append-only table; the serial id orders entries.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createMemoryTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate memory table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_entries (key, question, answer) VALUES ($1, $2, $3)`,
		key, entry.Question, entry.Answer,
	)
	return persistErr(OpAppend, key, err)
}

func (s *PostgresStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer FROM memory_entries WHERE key = $1 ORDER BY id`, key)
	if err != nil {
		return nil, persistErr(OpRead, key, err)
	}
	defer rows.Close()

	entries := []model.MemoryEntry{}
	for rows.Next() {
		var e model.MemoryEntry
		if err := rows.Scan(&e.Question, &e.Answer); err != nil {
			return nil, persistErr(OpRead, key, err)
		}
		entries = append(entries, e)
	}
	return entries, persistErr(OpRead, key, rows.Err())
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}
