package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/npillmayer/typecascade/core"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// storeSchemaVersion tracks the layout of the SQLite store. Version 2 adds
// the fonts table.
const storeSchemaVersion = 2

// SQLiteStore is a Store backed by an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)
var _ FontStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, core.Error(core.EINVALID, "database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create database directory")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot open database %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, core.WrapError(err, core.ECONNECTION, "cannot enable WAL for %s", path)
	}
	if err = ensureStoreSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, core.WrapError(err, core.ECONNECTION, "cannot prepare database %s", path)
	}
	tracer().Infof("document store ready at %s", path)
	return &SQLiteStore{db: db}, nil
}

func ensureStoreSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			key       TEXT PRIMARY KEY,
			body      BLOB NOT NULL,
			saved_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS fonts (
			fingerprint TEXT PRIMARY KEY,
			body        BLOB NOT NULL,
			saved_at    TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	var version int
	err := db.QueryRowContext(ctx, `SELECT CAST(value AS INTEGER) FROM meta WHERE key='schema'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('schema', ?)`,
			fmt.Sprint(storeSchemaVersion))
		return err
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version > storeSchemaVersion:
		return fmt.Errorf("database schema %d is newer than %d", version, storeSchemaVersion)
	case version < storeSchemaVersion:
		tracer().Infof("upgrading database schema %d to %d", version, storeSchemaVersion)
		_, err = db.ExecContext(ctx, `UPDATE meta SET value=? WHERE key='schema'`,
			fmt.Sprint(storeSchemaVersion))
		return err
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, doc []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents (key, body, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body=excluded.body, saved_at=excluded.saved_at`,
		key, doc, now)
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot save document %s", key)
	}
	tracer().Debugf("saved document %s (%d bytes)", key, len(doc))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key=?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.WrapError(err, core.EMISSING, "no document %s", key)
	} else if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot load document %s", key)
	}
	return body, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key=?`, key); err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot delete document %s", key)
	}
	return nil
}

func (s *SQLiteStore) SaveFont(ctx context.Context, fp string, data []byte) error {
	if err := checkFingerprint(fp); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `INSERT INTO fonts (fingerprint, body, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING`, fp, data, now)
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot save font %s", fp)
	}
	tracer().Debugf("saved font %s (%d bytes)", fp, len(data))
	return nil
}

func (s *SQLiteStore) LoadFont(ctx context.Context, fp string) ([]byte, error) {
	if err := checkFingerprint(fp); err != nil {
		return nil, err
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM fonts WHERE fingerprint=?`, fp).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.WrapError(err, core.EMISSING, "no font %s", fp)
	} else if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot load font %s", fp)
	}
	return body, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
