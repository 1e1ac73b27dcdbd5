// Package record persists analyzed records in a db.Store.
//
// Records are keyed by their content hash. The hash is a pure function
// of the value, so lookup by value recomputes the hash and reads one
// key, and the store-wide uniqueness of value and hash coincide.
package record

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/stringdex/internal/db"
	"github.com/kailas-cloud/stringdex/internal/domain"
	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
	"github.com/kailas-cloud/stringdex/internal/domain/query"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
)

// store is the consumer interface for records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, keys ...string) (int, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo implements usecase/record.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a record repository. keyPrefix namespaces all keys.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "record:"}
}

// Insert stores a record if no record with the same content hash exists.
// The insert-if-absent is one atomic store operation; there is no
// check-then-insert window.
func (r *Repo) Insert(ctx context.Context, rec domrec.Record) error {
	data, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := r.key(rec.Hash())
	created, err := r.store.SetNX(ctx, key, data)
	if err != nil {
		return fmt.Errorf("setnx %s: %w", key, err)
	}
	if !created {
		return domain.ErrAlreadyExists
	}
	return nil
}

// GetByValue returns the record for an exact value.
func (r *Repo) GetByValue(ctx context.Context, value string) (domrec.Record, error) {
	key := r.key(analysis.Hash(value))
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("get %s: %w", key, err)
	}
	return unmarshalRecord(raw)
}

// List returns all records satisfying f, ordered by creation time then
// content hash so repeated listings are stable across drivers.
func (r *Repo) List(ctx context.Context, f query.FilterSet) ([]domrec.Record, error) {
	keys, err := r.store.Keys(ctx, r.prefix)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	blobs, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	recs := make([]domrec.Record, 0, len(blobs))
	for _, raw := range blobs {
		rec, err := unmarshalRecord(raw)
		if err != nil {
			return nil, err
		}
		if f.Matches(rec.Value(), rec.Properties()) {
			recs = append(recs, rec)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt().Equal(recs[j].CreatedAt()) {
			return recs[i].CreatedAt().Before(recs[j].CreatedAt())
		}
		return recs[i].Hash() < recs[j].Hash()
	})
	return recs, nil
}

// DeleteByValue removes the record for an exact value.
func (r *Repo) DeleteByValue(ctx context.Context, value string) error {
	key := r.key(analysis.Hash(value))
	n, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every record and returns how many were deleted.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.store.Keys(ctx, r.prefix)
	if err != nil {
		return 0, fmt.Errorf("scan records: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("del records: %w", err)
	}
	return n, nil
}

func (r *Repo) key(hash string) string {
	return r.prefix + hash
}
