package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// Service is the cached view of the marketing backend. Reads share one
// in-flight call per key, mutations invalidate the keys they touch.
type Service struct {
	client   marketing.IService
	store    *querycache.Store
	notifier Notifier
	logger   *zap.Logger
}

type serviceOptions struct {
	notifier Notifier
	logger   *zap.Logger
}

// Option ...
type Option func(opts *serviceOptions)

// WithNotifier ...
func WithNotifier(n Notifier) Option {
	return func(opts *serviceOptions) {
		opts.notifier = n
	}
}

// WithLogger ...
func WithLogger(logger *zap.Logger) Option {
	return func(opts *serviceOptions) {
		opts.logger = logger
	}
}

// New ...
func New(client marketing.IService, store *querycache.Store, options ...Option) *Service {
	opts := serviceOptions{
		logger: zap.NewNop(),
	}
	for _, fn := range options {
		fn(&opts)
	}
	if opts.notifier == nil {
		opts.notifier = NewLogNotifier(opts.logger)
	}

	return &Service{
		client:   client,
		store:    store,
		notifier: opts.notifier,
		logger:   opts.logger,
	}
}

type mutation struct {
	action      string
	success     string
	invalidates []querycache.Key

	// committedOnError reports errors returned after the backend already changed state
	committedOnError func(err error) bool
}

// mutate runs fn once. Keys are invalidated before the result is returned,
// so any read issued after mutate returns refetches them.
func mutate[T any](
	ctx context.Context, s *Service, m mutation, fn func(ctx context.Context) (T, error),
) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		if m.committedOnError != nil && m.committedOnError(err) {
			s.invalidate(m.invalidates...)
		}
		s.notifier.Notify(ctx, Toast{
			Kind:    ToastError,
			Message: fmt.Sprintf("Failed to %s: %s", m.action, err.Error()),
		})
		return v, err
	}

	s.invalidate(m.invalidates...)
	s.notifier.Notify(ctx, Toast{Kind: ToastSuccess, Message: m.success})
	return v, nil
}

func (s *Service) invalidate(keys ...querycache.Key) {
	if err := s.store.Invalidate(keys...); err != nil {
		s.logger.Error("Invalidate query cache", zap.Error(err))
	}
}

// Invalidate drops every cached value below keys, e.g. RootKey after an out-of-band change
func (s *Service) Invalidate(keys ...querycache.Key) error {
	return s.store.Invalidate(keys...)
}

func campaignScope(id int64) []querycache.Key {
	return []querycache.Key{
		CampaignDetailKey(id),
		CampaignsKey(),
		DashboardKey(),
		PerformanceKey(),
		SystemHealthKey(),
	}
}

func executionScope(campaignID int64, executionID int64) []querycache.Key {
	keys := []querycache.Key{
		CampaignExecutionsKey(campaignID),
		ExecutionsKey(),
		CampaignDashboardKey(campaignID),
	}
	if executionID != 0 {
		keys = append(keys, ExecutionDetailKey(executionID))
	}
	return keys
}

func systemScope() []querycache.Key {
	return []querycache.Key{
		CampaignsKey(),
		ExecutionsKey(),
		PerformanceKey(),
		MetricsKey(),
		DashboardKey(),
		BudgetKey(),
		SystemHealthKey(),
	}
}
