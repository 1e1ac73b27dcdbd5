// Package db defines the driver-agnostic key-value contract the record
// store is built on. Drivers live in subpackages (redis, postgres,
// sqlite) and are selected by configuration.
package db

import (
	"context"
	"time"
)

// Store is the storage facade every driver implements.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations the record repository needs.
// SetNX is the atomic insert-if-absent primitive: it must never allow
// two writers to both observe a successful first write for the same key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (created bool, err error)
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int, error)
	// Keys lists all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// GetMulti fetches values for keys, skipping keys deleted since listing.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
}
