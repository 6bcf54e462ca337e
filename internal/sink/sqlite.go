package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// SQLite stores the latest record per id in a documents table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path. Use ":memory:" for an
// in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "open sqlite database").
			WithContext("path", path).
			Build()
	}
	// One connection keeps ":memory:" databases shared across writers.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryStore, "initialize schema").
			WithContext("path", path).
			Build()
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		extension TEXT NOT NULL,
		record TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_extension ON documents(extension);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Name() string { return "sqlite" }

// Write upserts rec keyed by its id.
func (s *SQLite) Write(ctx context.Context, rec content.Parsed) error {
	id := rec.ID()
	if id == "" {
		return errors.StoreError("record has no id").Build()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "marshal record").WithContext("id", id).Build()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, extension, record, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			extension = excluded.extension,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		id, content.Extension(id), string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "upsert document").WithContext("id", id).Build()
	}
	return nil
}

// Get loads the stored record for id. A missing id is a not-found error.
func (s *SQLite) Get(ctx context.Context, id string) (content.Parsed, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT record FROM documents WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewError(errors.CategoryNotFound, "document not found").WithContext("id", id).Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "query document").WithContext("id", id).Build()
	}
	var rec content.Parsed
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "unmarshal document").WithContext("id", id).Build()
	}
	return rec, nil
}

// Count returns the number of stored documents, optionally for one extension.
func (s *SQLite) Count(ctx context.Context, ext string) (int, error) {
	query, args := "SELECT COUNT(*) FROM documents", []any{}
	if ext != "" {
		query += " WHERE extension = ?"
		args = append(args, ext)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.WrapError(err, errors.CategoryStore, "count documents").Build()
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
