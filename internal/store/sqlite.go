package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"calpersonal/internal/model"
)

const SQLiteFileName = "cache.sqlite"

// SQLiteStore keeps the documents as rows of a single table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the cache database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context) Cache {
	return Cache{
		Events: decodeEvents(s.read(ctx, EventsDoc)),
		Tasks:  decodeTasks(s.read(ctx, TasksDoc)),
	}
}

func (s *SQLiteStore) read(ctx context.Context, doc string) []byte {
	var body []byte
	// sql.ErrNoRows on first run; read errors are treated the same way.
	if err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, doc).Scan(&body); err != nil {
		return nil
	}
	return body
}

func (s *SQLiteStore) write(ctx context.Context, doc string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents(name, body, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		doc, body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s: %w", doc, err)
	}
	return nil
}

func (s *SQLiteStore) SaveEvents(ctx context.Context, events EventIndex) error {
	b, err := encodeEvents(events)
	if err != nil {
		return err
	}
	return s.write(ctx, EventsDoc, b)
}

func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []model.TaskEntry) error {
	b, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	return s.write(ctx, TasksDoc, b)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
