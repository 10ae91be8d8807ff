package keyring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists keys in a single-file SQLite database.
//
// One row per key. The file is created on first open, including parent
// schema; concurrent access from one process is safe (database/sql
// serializes; SQLite locks the file).
type SQLiteStore struct {
	db        *sql.DB
	tableName string
}

// SQLiteStoreOpt configures a SQLiteStore.
type SQLiteStoreOpt func(*SQLiteStore)

// WithTableName overrides the default "credentials" table name.
func WithTableName(name string) SQLiteStoreOpt {
	return func(s *SQLiteStore) {
		s.tableName = name
	}
}

// NewSQLiteStore opens (and if needed initializes) the state database at path.
func NewSQLiteStore(path string, opts ...SQLiteStoreOpt) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	store := &SQLiteStore{
		db:        db,
		tableName: "credentials",
	}

	for _, o := range opts {
		o(store)
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	createTable := fmt.Sprintf(`
	create table if not exists %s (
		k text primary key,
		v text not null
	);`, s.tableName)
	_, err := s.db.Exec(createTable)
	return err
}

// Get returns the value for key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`select v from %s where k = ?;`, s.tableName)

	var v string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %q: %w", key, err)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		insert into %s (k, v)
		values (?, ?)
		on conflict(k) do update set v=excluded.v;
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`delete from %s where k = ?;`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
