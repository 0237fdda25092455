package scope

import (
	"sync"

	"github.com/xraph/binder/internal/types"
)

// Store keeps session and request scoped instances outside the descriptors.
type Store interface {
	// GetOrCreate returns the instance stored for key in the given scope id,
	// calling create at most once per (key, id) while it keeps succeeding.
	GetOrCreate(s Scope, id string, key types.Key, create func() (any, error)) (any, error)
	// End drops every instance of the scope id and returns how many were held.
	End(s Scope, id string) int
}

type bucketKey struct {
	scope Scope
	id    string
}

type cell struct {
	mu    sync.Mutex
	done  bool
	value any
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[bucketKey]map[types.Key]*cell
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[bucketKey]map[types.Key]*cell)}
}

// GetOrCreate implements Store.
func (m *MemoryStore) GetOrCreate(s Scope, id string, key types.Key, create func() (any, error)) (any, error) {
	c := m.cell(bucketKey{scope: s, id: id}, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return c.value, nil
	}

	v, err := create()
	if err != nil {
		return nil, err
	}

	c.value = v
	c.done = true
	return v, nil
}

func (m *MemoryStore) cell(bk bucketKey, key types.Key) *cell {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.buckets[bk]
	if !ok {
		bucket = make(map[types.Key]*cell)
		m.buckets[bk] = bucket
	}
	c, ok := bucket[key]
	if !ok {
		c = &cell{}
		bucket[key] = c
	}
	return c
}

// End implements Store.
func (m *MemoryStore) End(s Scope, id string) int {
	bk := bucketKey{scope: s, id: id}

	m.mu.Lock()
	bucket := m.buckets[bk]
	delete(m.buckets, bk)
	m.mu.Unlock()

	n := 0
	for _, c := range bucket {
		c.mu.Lock()
		if c.done {
			n++
		}
		c.mu.Unlock()
	}
	return n
}

// Active returns the number of live scope ids of kind s.
func (m *MemoryStore) Active(s Scope) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for bk := range m.buckets {
		if bk.scope == s {
			n++
		}
	}
	return n
}

// Reset drops every stored instance of every scope.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	m.buckets = make(map[bucketKey]map[types.Key]*cell)
	m.mu.Unlock()
}
