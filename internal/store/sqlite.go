package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chatbar/internal/logger"
)

type sqliteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) a database holding a single
// ItemTable(key, value) the way editor state databases do.
func OpenSQLite(path string) (KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	// WAL + busy timeout so a second reader does not trip over locks
	_, _ = db.Exec("PRAGMA busy_timeout=5000")
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS ItemTable (key TEXT PRIMARY KEY, value BLOB)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ItemTable: %w", err)
	}
	return &sqliteStore{db: db, path: path}, nil
}

func (s *sqliteStore) Get(key string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRow("SELECT value FROM ItemTable WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *sqliteStore) Set(key string, value []byte) error {
	_, err := s.db.Exec("INSERT INTO ItemTable(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value", key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	logger.Debug("kv write", "component", "sqlite", "key", key, "bytes", len(value))
	return nil
}

func (s *sqliteStore) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM ItemTable WHERE key = ?", key)
	return err
}

func (s *sqliteStore) Close() error {
	// fold the WAL back so a plain file copy is a complete backup
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}
