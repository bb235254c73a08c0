package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteStore implements Store for SQLite. The on-disk layout mirrors the
// original flat-file split: profiles and match-id lists share the main file
// while the champion catalog, timelines, and summaries each get their own,
// so the large timeline file can be deleted without losing the rest.
type sqliteStore struct {
	dbs map[string]*sql.DB // collection name -> database handle
	all []*sql.DB
}

// file suffix per logical store; collections map onto these below.
var sqliteFiles = map[string]string{
	CollectionSummoners: ".db",
	CollectionMatchIDs:  ".db",
	CollectionChampions: "-cl.db",
	CollectionTimelines: "-tl.db",
	CollectionSummaries: "-ms.db",
}

// NewSQLite opens the SQLite-backed store, creating the database files and
// collection tables if they do not exist yet.
func NewSQLite(cfg SQLiteConfig) (Store, error) {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "data/loldb"
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.PathPrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	s := &sqliteStore{dbs: make(map[string]*sql.DB)}

	opened := make(map[string]*sql.DB) // suffix -> handle, shared across collections
	for _, collection := range Collections {
		suffix := sqliteFiles[collection]
		db, ok := opened[suffix]
		if !ok {
			var err error
			db, err = openSQLiteFile(cfg.PathPrefix + suffix)
			if err != nil {
				s.Close()
				return nil, err
			}
			opened[suffix] = db
			s.all = append(s.all, db)
		}

		// rowid keeps insertion order for Keys.
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			key_value TEXT PRIMARY KEY,
			key_field TEXT NOT NULL,
			details   TEXT NOT NULL
		)`, collection)
		if _, err := db.Exec(ddl); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", collection, err)
		}

		s.dbs[collection] = db
	}

	return s, nil
}

func openSQLiteFile(path string) (*sql.DB, error) {
	// WAL mode allows concurrent reads while writing
	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database %s: %w", path, err)
	}

	return db, nil
}

func (s *sqliteStore) db(collection string) (*sql.DB, error) {
	db, ok := s.dbs[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	return db, nil
}

func (s *sqliteStore) Get(ctx context.Context, collection, keyField, keyValue string) (json.RawMessage, bool, error) {
	db, err := s.db(collection)
	if err != nil {
		return nil, false, err
	}

	var details string
	query := fmt.Sprintf(`SELECT details FROM %q WHERE key_value = ?`, collection)
	err = db.QueryRowContext(ctx, query, keyValue).Scan(&details)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", collection, keyValue, err)
	}

	return json.RawMessage(details), true, nil
}

func (s *sqliteStore) Put(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) (bool, error) {
	db, err := s.db(collection)
	if err != nil {
		return false, err
	}

	// First-write-wins: an existing record is left untouched.
	query := fmt.Sprintf(`INSERT INTO %q (key_value, key_field, details) VALUES (?, ?, ?)
		ON CONFLICT(key_value) DO NOTHING`, collection)
	if _, err := db.ExecContext(ctx, query, keyValue, keyField, string(payload)); err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", collection, keyValue, err)
	}

	return true, nil
}

func (s *sqliteStore) Replace(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) error {
	db, err := s.db(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %q (key_value, key_field, details) VALUES (?, ?, ?)
		ON CONFLICT(key_value) DO UPDATE SET details = excluded.details`, collection)
	if _, err := db.ExecContext(ctx, query, keyValue, keyField, string(payload)); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, keyValue, err)
	}

	return nil
}

func (s *sqliteStore) Keys(ctx context.Context, collection string) ([]string, error) {
	db, err := s.db(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT key_value FROM %q ORDER BY rowid`, collection)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s keys: %w", collection, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *sqliteStore) Type() string {
	return TypeSQLite
}

func (s *sqliteStore) Close() error {
	var firstErr error
	for _, db := range s.all {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
