package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"menuplanner/menu"
)

// SQLiteStore persists snapshots in a single-file database, one row per key.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS menu_snapshots (
        key TEXT PRIMARY KEY,
        payload BLOB NOT NULL,
        created_at DATETIME NOT NULL
    );
    `
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) (menu.MenuSnapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM menu_snapshots WHERE key = ?", key.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query menu snapshot: %w", err)
	}

	var snapshot menu.MenuSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key Key, snapshot menu.MenuSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode menu snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO menu_snapshots (key, payload, created_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key.String(), payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store menu snapshot: %w", err)
	}
	return nil
}
