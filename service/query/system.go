package query

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// ProcessScheduled ...
func (s *Service) ProcessScheduled(ctx context.Context) (model.SystemOperationResult, error) {
	return mutate(ctx, s, mutation{
		action:      "process scheduled campaigns",
		success:     "Scheduled campaigns processed successfully",
		invalidates: systemScope(),
	}, s.client.ProcessScheduled)
}

// RetryFailed ...
func (s *Service) RetryFailed(ctx context.Context) (model.SystemOperationResult, error) {
	return mutate(ctx, s, mutation{
		action:      "retry failed executions",
		success:     "Failed executions retried successfully",
		invalidates: systemScope(),
	}, s.client.RetryFailed)
}

// OptimizeCampaigns ...
func (s *Service) OptimizeCampaigns(ctx context.Context) (model.SystemOperationResult, error) {
	return mutate(ctx, s, mutation{
		action:      "optimize campaigns",
		success:     "Campaigns optimized successfully",
		invalidates: systemScope(),
	}, s.client.OptimizeCampaigns)
}

// GetSystemHealth ...
func (s *Service) GetSystemHealth(ctx context.Context) (model.SystemHealth, error) {
	return querycache.Fetch(ctx, s.store, SystemHealthKey(), systemHealthPolicy, s.client.GetSystemHealth)
}

// WatchSystemHealth ...
func (s *Service) WatchSystemHealth(ctx context.Context, onResult func(model.SystemHealth, error)) {
	querycache.Watch(ctx, s.store, SystemHealthKey(), systemHealthPolicy, s.client.GetSystemHealth, onResult)
}

// TrackConversion is not cached and shows no toast
func (s *Service) TrackConversion(
	ctx context.Context, trackingCode string, event string, value decimal.NullDecimal,
) marketing.TrackResult {
	return s.client.TrackConversion(ctx, trackingCode, event, value)
}

// TrackUnsubscribe ...
func (s *Service) TrackUnsubscribe(ctx context.Context, trackingCode string, reason string) marketing.TrackResult {
	return s.client.TrackUnsubscribe(ctx, trackingCode, reason)
}
