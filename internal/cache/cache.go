// Package cache stores drained ledger table snapshots so repeated scans
// against an unchanged ledger skip the paginated refetch.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the snapshot store interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// TableKey builds the cache key for one ledger table. The base id is
// hashed so tokens or ids never appear in cache file names.
func TableKey(baseID, table string) string {
	sum := sha256.Sum256([]byte(baseID + "/" + table))
	return "runledger:v1:" + hex.EncodeToString(sum[:8]) + ":" + table
}

// Memory is a process-local snapshot cache.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a snapshot if present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	if v, ok := m.store.Get(key); ok {
		return v.([]byte), true
	}
	return nil, false
}

// Set stores a snapshot with the given TTL (0 means the default).
func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	m.store.Set(key, value, ttl)
	return nil
}

// Delete removes one snapshot.
func (m *Memory) Delete(key string) error {
	m.store.Delete(key)
	return nil
}

// Clear drops all snapshots.
func (m *Memory) Clear() error {
	m.store.Flush()
	return nil
}
