package record

import (
	"context"
	"strings"
	"sync"

	"github.com/kailas-cloud/stringdex/internal/db"
)

// mockStore implements the consumer interface for tests. Behaviors can
// be overridden per call; by default it acts as an in-memory KV store.
type mockStore struct {
	mu   sync.Mutex
	data map[string][]byte

	getFn      func(ctx context.Context, key string) ([]byte, error)
	setNXFn    func(ctx context.Context, key string, value []byte) (bool, error)
	delFn      func(ctx context.Context, keys ...string) (int, error)
	keysFn     func(ctx context.Context, prefix string) ([]string, error)
	getMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) (int, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if m.keysFn != nil {
		return m.keysFn(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.getMultiFn != nil {
		return m.getMultiFn(ctx, keys)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([][]byte, 0, len(keys))
	for _, key := range keys {
		if v, ok := m.data[key]; ok {
			values = append(values, v)
		}
	}
	return values, nil
}
