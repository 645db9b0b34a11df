package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// VideoKeyPrefix is the key namespace for serialized video records.
const VideoKeyPrefix = "video_"

// DefaultTTL is how long a cached video record lives unless re-set.
const DefaultTTL = 24 * time.Hour

// KeyValueStore is the cache contract the rest of the service depends on.
// Implementations swallow their own errors: a cache outage reads as "nothing
// is cached" rather than aborting a request. Set and Delete report success
// as a bool for the same reason.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	Keys(ctx context.Context, prefix string) []string
}

// MemoryStore is an in-process fallback used when Redis is not reachable at
// startup. Prefix enumeration scans the map directly, so no secondary index
// is needed here.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	data := make([]byte, len(value))
	copy(data, value)

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: expires}
	m.mu.Unlock()
	return true
}

func (m *MemoryStore) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return true
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) []string {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key, entry := range m.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
