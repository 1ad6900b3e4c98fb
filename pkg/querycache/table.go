package querycache

import "time"

// GetOutput ...
type GetOutput struct {
	Found bool
	Data  []byte
}

// Table is the byte store behind a Store, local (freecache) or remote (memcached).
// Get may not return an entry that was just set (eviction).
type Table interface {
	Get(key string) (GetOutput, error)
	Set(key string, data []byte, ttl time.Duration) error
	Delete(key string) error
}

// Policy is the freshness policy of one query
type Policy struct {
	// Name labels metrics
	Name string

	// StaleTime is how long a cached value is served without refetching
	StaleTime time.Duration

	// RefetchInterval forces a refetch periodically while watched, zero disables it
	RefetchInterval time.Duration
}
