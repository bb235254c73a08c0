package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore implements Store for PostgreSQL. All collections live in one
// database, one table per collection, with the details payload as JSONB.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQL creates a new PostgreSQL-backed store.
// It creates a connection pool and the collection tables if missing.
func NewPostgreSQL(ctx context.Context, cfg PostgreSQLConfig) (Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("PostgreSQL URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10 // default
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	s := &postgresStore{pool: pool}
	for _, collection := range Collections {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			key_value   TEXT PRIMARY KEY,
			key_field   TEXT NOT NULL,
			details     JSONB NOT NULL,
			inserted_at BIGSERIAL
		)`, collection)
		if _, err := pool.Exec(ctx, ddl); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", collection, err)
		}
	}

	return s, nil
}

func (s *postgresStore) Get(ctx context.Context, collection, keyField, keyValue string) (json.RawMessage, bool, error) {
	if !knownCollection(collection) {
		return nil, false, fmt.Errorf("unknown collection: %s", collection)
	}

	var details []byte
	query := fmt.Sprintf(`SELECT details FROM %q WHERE key_value = $1`, collection)
	err := s.pool.QueryRow(ctx, query, keyValue).Scan(&details)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", collection, keyValue, err)
	}

	return json.RawMessage(details), true, nil
}

func (s *postgresStore) Put(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) (bool, error) {
	if !knownCollection(collection) {
		return false, fmt.Errorf("unknown collection: %s", collection)
	}

	query := fmt.Sprintf(`INSERT INTO %q (key_value, key_field, details) VALUES ($1, $2, $3)
		ON CONFLICT (key_value) DO NOTHING`, collection)
	if _, err := s.pool.Exec(ctx, query, keyValue, keyField, []byte(payload)); err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", collection, keyValue, err)
	}

	return true, nil
}

func (s *postgresStore) Replace(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) error {
	if !knownCollection(collection) {
		return fmt.Errorf("unknown collection: %s", collection)
	}

	query := fmt.Sprintf(`INSERT INTO %q (key_value, key_field, details) VALUES ($1, $2, $3)
		ON CONFLICT (key_value) DO UPDATE SET details = EXCLUDED.details`, collection)
	if _, err := s.pool.Exec(ctx, query, keyValue, keyField, []byte(payload)); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, keyValue, err)
	}

	return nil
}

func (s *postgresStore) Keys(ctx context.Context, collection string) ([]string, error) {
	if !knownCollection(collection) {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}

	query := fmt.Sprintf(`SELECT key_value FROM %q ORDER BY inserted_at`, collection)
	rows, err := s.pool.Query(ctx, query)
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

func (s *postgresStore) Type() string {
	return TypePostgreSQL
}

func (s *postgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
