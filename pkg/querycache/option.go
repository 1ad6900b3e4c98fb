package querycache

import (
	"time"

	"go.uber.org/zap"
)

// Timer ...
type Timer interface {
	Now() time.Time
}

type realTimer struct{}

func (realTimer) Now() time.Time {
	return time.Now()
}

type storeOptions struct {
	cacheTime    time.Duration
	fetchTimeout time.Duration
	timer        Timer
	logger       *zap.Logger
	metrics      *Metrics
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		cacheTime:    5 * time.Minute,
		fetchTimeout: 30 * time.Second,
		timer:        realTimer{},
		logger:       zap.NewNop(),
	}
}

func newStoreOptions(options ...Option) storeOptions {
	opts := defaultStoreOptions()
	for _, fn := range options {
		fn(&opts)
	}
	return opts
}

// Option ...
type Option func(opts *storeOptions)

// WithCacheTime is the TTL of entries in the table, after which unused values are dropped
func WithCacheTime(d time.Duration) Option {
	return func(opts *storeOptions) {
		opts.cacheTime = d
	}
}

// WithFetchTimeout bounds a shared fetch, which outlives the callers that abandon it
func WithFetchTimeout(d time.Duration) Option {
	return func(opts *storeOptions) {
		opts.fetchTimeout = d
	}
}

// WithTimer ...
func WithTimer(timer Timer) Option {
	return func(opts *storeOptions) {
		opts.timer = timer
	}
}

// WithLogger ...
func WithLogger(logger *zap.Logger) Option {
	return func(opts *storeOptions) {
		opts.logger = logger
	}
}

// WithMetrics ...
func WithMetrics(m *Metrics) Option {
	return func(opts *storeOptions) {
		opts.metrics = m
	}
}
