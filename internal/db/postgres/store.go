// Package postgres implements db.Store on a single key-value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // postgres driver registration

	"github.com/kailas-cloud/stringdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS stringdex_kv (
	k TEXT PRIMARY KEY,
	v BYTEA NOT NULL
)`

// Config holds connection parameters for a Postgres store.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Store implements db.Store over a stringdex_kv table.
type Store struct {
	sqldb *sql.DB
}

// NewStore opens a connection pool and ensures the schema exists.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	sqldb, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	return &Store{sqldb: sqldb}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqldb.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	_ = s.sqldb.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires,
// then ensures the schema.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("timeout waiting for database: %w", waitCtx.Err())
		case <-ticker.C:
			if err := s.Ping(waitCtx); err == nil {
				if _, err := s.sqldb.ExecContext(ctx, schema); err != nil {
					return &db.Error{Op: db.OpExec, Err: err}
				}
				return nil
			}
		}
	}
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.sqldb.QueryRowContext(ctx,
		`SELECT v FROM stringdex_kv WHERE k = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return value, nil
}

// SetNX inserts a row only if the key is absent. ON CONFLICT DO NOTHING
// makes the conditional insert a single atomic statement.
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.sqldb.ExecContext(ctx,
		`INSERT INTO stringdex_kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO NOTHING`,
		key, value,
	)
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: err}
	}
	return n > 0, nil
}

// Del removes keys and returns how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	deleted := 0
	for _, key := range keys {
		res, err := s.sqldb.ExecContext(ctx,
			`DELETE FROM stringdex_kv WHERE k = $1`, key,
		)
		if err != nil {
			return deleted, &db.Error{Op: db.OpExec, Err: err}
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += int(n)
		}
	}
	return deleted, nil
}

// Keys lists all keys starting with prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.sqldb.QueryContext(ctx,
		`SELECT k FROM stringdex_kv WHERE k LIKE $1 ESCAPE '\'`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return keys, nil
}

// GetMulti fetches values for keys, skipping keys deleted since listing.
func (s *Store) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	values := make([][]byte, 0, len(keys))
	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// escapeLike escapes LIKE metacharacters so prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
