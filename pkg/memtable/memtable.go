package memtable

import (
	"errors"
	"time"

	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/coocood/freecache"
)

// MemTable is an in-process cache table backed by freecache (with eviction)
type MemTable struct {
	cache *freecache.Cache
}

var _ querycache.Table = &MemTable{}

// New creates freecache with size in bytes
func New(size int) *MemTable {
	return &MemTable{
		cache: freecache.NewCache(size),
	}
}

// Get ...
func (m *MemTable) Get(key string) (querycache.GetOutput, error) {
	data, err := m.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return querycache.GetOutput{}, nil
	}
	if err != nil {
		return querycache.GetOutput{}, err
	}
	return querycache.GetOutput{
		Found: true,
		Data:  data,
	}, nil
}

// Set with ttl = 0 never expires (may still be evicted)
func (m *MemTable) Set(key string, data []byte, ttl time.Duration) error {
	return m.cache.Set([]byte(key), data, int(ttl/time.Second))
}

// Delete ...
func (m *MemTable) Delete(key string) error {
	m.cache.Del([]byte(key))
	return nil
}

// EntryCount ...
func (m *MemTable) EntryCount() int64 {
	return m.cache.EntryCount()
}
