// Package storage provides the SQLite-backed durable key-value store the
// adaptive categorizer persists its state through.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/coinsort/internal/common"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// StateStore implements service.StateStore using SQLite.
type StateStore struct {
	db     *sql.DB
	dbPath string
}

// NewStateStore opens (creating if needed) the state database at dbPath.
func NewStateStore(dbPath string) (*StateStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &StateStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrate creates the key-value schema if it does not exist.
func (s *StateStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS kv_state (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		)`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kv_state table: %w", err)
	}
	return nil
}

// Get returns the value stored under (namespace, key), or common.ErrNotFound.
func (s *StateStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_state WHERE namespace = ? AND key = ?`,
		namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %s/%s: %w", namespace, key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// Put stores value under (namespace, key), replacing any prior value.
func (s *StateStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("value cannot be nil")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_state (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes (namespace, key). Deleting a missing key is not an error.
func (s *StateStore) Delete(ctx context.Context, namespace, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_state WHERE namespace = ? AND key = ?`,
		namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *StateStore) Close() error {
	return s.db.Close()
}
