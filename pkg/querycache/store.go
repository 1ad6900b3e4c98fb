package querycache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/twmb/murmur3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const numGenerationShards = 64

// FetchFunc loads the value of a key from the source of truth
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Store is a request-deduplicating, invalidatable read-through cache.
// Store can be shared between goroutines. Create one per process (or per test).
type Store struct {
	table Table
	opts  storeOptions

	group singleflight.Group

	// serializes seeding and bumping of a generation
	genLocks [numGenerationShards]sync.Mutex
	lastGen  uint64
}

// New ...
func New(table Table, options ...Option) *Store {
	opts := newStoreOptions(options...)
	return &Store{
		table:   table,
		opts:    opts,
		lastGen: uint64(opts.timer.Now().UnixNano()),
	}
}

func entryKey(k Key) string {
	return "q:" + k.String()
}

func generationKey(k Key) string {
	return "g:" + k.String()
}

func (s *Store) genLock(key string) *sync.Mutex {
	return &s.genLocks[murmur3.Sum32([]byte(key))%numGenerationShards]
}

// nextGeneration never returns a value returned before by this store
func (s *Store) nextGeneration() uint64 {
	now := uint64(s.opts.timer.Now().UnixNano())
	for {
		last := atomic.LoadUint64(&s.lastGen)
		next := last + 1
		if now > next {
			next = now
		}
		if atomic.CompareAndSwapUint64(&s.lastGen, last, next) {
			return next
		}
	}
}

func (s *Store) getGeneration(key string) (uint64, bool, error) {
	out, err := s.table.Get(key)
	if err != nil {
		return 0, false, err
	}
	if !out.Found {
		return 0, false, nil
	}
	gen, ok := unmarshalGeneration(out.Data)
	return gen, ok, nil
}

func (s *Store) generation(prefix Key) (uint64, error) {
	key := generationKey(prefix)

	gen, ok, err := s.getGeneration(key)
	if err != nil {
		return 0, err
	}
	if ok {
		return gen, nil
	}

	lock := s.genLock(key)
	lock.Lock()
	defer lock.Unlock()

	gen, ok, err = s.getGeneration(key)
	if err != nil {
		return 0, err
	}
	if ok {
		return gen, nil
	}

	// A missing generation (never set, or evicted) is reseeded with a fresh value,
	// so entries written under any earlier value can only miss.
	gen = s.nextGeneration()
	if err := s.table.Set(key, marshalGeneration(gen), 0); err != nil {
		return 0, err
	}
	return gen, nil
}

func (s *Store) generations(k Key) ([]uint64, error) {
	prefixes := k.prefixes()
	result := make([]uint64, 0, len(prefixes))
	for _, p := range prefixes {
		gen, err := s.generation(p)
		if err != nil {
			return nil, err
		}
		result = append(result, gen)
	}
	return result, nil
}

// Invalidate forces the next read of every key below each of keys to refetch
func (s *Store) Invalidate(keys ...Key) error {
	for _, k := range keys {
		key := generationKey(k)

		lock := s.genLock(key)
		lock.Lock()
		err := s.table.Set(key, marshalGeneration(s.nextGeneration()), 0)
		lock.Unlock()

		if err != nil {
			s.opts.metrics.tableError()
			return err
		}
	}
	s.opts.metrics.invalidated(len(keys))
	return nil
}

func (s *Store) lookup(k Key, gens []uint64, policy Policy) ([]byte, bool) {
	out, err := s.table.Get(entryKey(k))
	if err != nil {
		s.opts.metrics.tableError()
		s.opts.logger.Warn("Get cache entry", zap.String("key", k.String()), zap.Error(err))
		return nil, false
	}
	if !out.Found {
		return nil, false
	}

	e, err := unmarshalEntry(out.Data)
	if err != nil {
		s.opts.logger.Warn("Decode cache entry", zap.String("key", k.String()), zap.Error(err))
		return nil, false
	}
	if !equalGenerations(e.generations, gens) {
		return nil, false
	}

	age := s.opts.timer.Now().UnixNano() - e.fetchedAt
	if age < 0 || age >= int64(policy.StaleTime) {
		return nil, false
	}
	return e.data, true
}

func (s *Store) save(k Key, gens []uint64, fetchedAt int64, data []byte) {
	e := entry{
		fetchedAt:   fetchedAt,
		generations: gens,
		data:        data,
	}
	err := s.table.Set(entryKey(k), marshalEntry(e), s.opts.cacheTime)
	if err != nil {
		s.opts.metrics.tableError()
		s.opts.logger.Warn("Set cache entry", zap.String("key", k.String()), zap.Error(err))
	}
}

func (s *Store) fetchBytes(
	ctx context.Context, k Key, policy Policy, force bool,
	fn func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	gens, err := s.generations(k)
	if err != nil {
		// without generations nothing can be cached safely
		s.opts.metrics.tableError()
		s.opts.logger.Warn("Get cache generations", zap.String("key", k.String()), zap.Error(err))
		s.opts.metrics.miss(policy.Name)
		return fn(ctx)
	}

	if !force {
		data, ok := s.lookup(k, gens, policy)
		if ok {
			s.opts.metrics.hit(policy.Name)
			return data, nil
		}
	}
	s.opts.metrics.miss(policy.Name)

	flightKey := k.String() + "#" + generationsString(gens)
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.fetchTimeout)
		defer cancel()

		fetchedAt := s.opts.timer.Now().UnixNano()
		data, err := fn(fetchCtx)
		if err != nil {
			s.opts.metrics.fetchError(policy.Name)
			return nil, err
		}
		s.save(k, gens, fetchedAt, data)
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.opts.metrics.sharedFetch(policy.Name)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func encodeFetch[T any](fn FetchFunc[T]) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
}

func decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func fetch[T any](ctx context.Context, s *Store, k Key, policy Policy, force bool, fn FetchFunc[T]) (T, error) {
	data, err := s.fetchBytes(ctx, k, policy, force, encodeFetch(fn))
	if err != nil {
		var empty T
		return empty, err
	}
	return decode[T](data)
}

// Fetch returns the cached value of k if it is fresh under policy, otherwise calls fn.
// Concurrent fetches of the same key share one call of fn.
func Fetch[T any](ctx context.Context, s *Store, k Key, policy Policy, fn FetchFunc[T]) (T, error) {
	return fetch(ctx, s, k, policy, false, fn)
}

// Refetch ignores any cached value, the result still populates the cache
func Refetch[T any](ctx context.Context, s *Store, k Key, policy Policy, fn FetchFunc[T]) (T, error) {
	return fetch(ctx, s, k, policy, true, fn)
}
