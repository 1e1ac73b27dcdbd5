// Package sqlite implements db.Store on a single key-value table, for
// local and zero-infrastructure deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver registration

	"github.com/kailas-cloud/stringdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS stringdex_kv (
	k TEXT PRIMARY KEY,
	v BLOB NOT NULL
)`

// Config holds parameters for a SQLite store.
type Config struct {
	// Path is the database file, or ":memory:" for an ephemeral store.
	Path string
}

// Store implements db.Store over a stringdex_kv table.
type Store struct {
	sqldb *sql.DB
}

// NewStore opens (creating if needed) the database and ensures the schema.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	sqldb, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	sqldb.SetMaxOpenConns(1)

	if _, err := sqldb.Exec(schema); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{sqldb: sqldb}, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqldb.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the handle.
func (s *Store) Close() {
	_ = s.sqldb.Close()
}

// WaitForReady checks the handle once; a local file needs no polling.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Ping(ctx)
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.sqldb.QueryRowContext(ctx,
		`SELECT v FROM stringdex_kv WHERE k = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return value, nil
}

// SetNX inserts a row only if the key is absent, in one statement.
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.sqldb.ExecContext(ctx,
		`INSERT OR IGNORE INTO stringdex_kv (k, v) VALUES (?, ?)`,
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
			`DELETE FROM stringdex_kv WHERE k = ?`, key,
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
		`SELECT k FROM stringdex_kv WHERE k LIKE ? ESCAPE '\'`,
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
