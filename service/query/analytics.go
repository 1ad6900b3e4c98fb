package query

import (
	"context"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// GetCampaignPerformance ...
func (s *Service) GetCampaignPerformance(
	ctx context.Context, id int64, r marketing.DateRange,
) (model.CampaignPerformance, error) {
	return querycache.Fetch(ctx, s.store, CampaignPerformanceKey(id, r), campaignPerformancePolicy,
		func(ctx context.Context) (model.CampaignPerformance, error) {
			return s.client.GetCampaignPerformance(ctx, id, r)
		},
	)
}

// GetOverallPerformance ...
func (s *Service) GetOverallPerformance(ctx context.Context) (model.OverallPerformance, error) {
	return querycache.Fetch(ctx, s.store, OverallPerformanceKey(), overallPerformancePolicy,
		s.client.GetOverallPerformance,
	)
}

// GetCampaignTypePerformance ...
func (s *Service) GetCampaignTypePerformance(ctx context.Context) ([]model.CampaignTypePerformance, error) {
	return querycache.Fetch(ctx, s.store, CampaignTypePerformanceKey(), typePerformancePolicy,
		s.client.GetCampaignTypePerformance,
	)
}

// GetCampaignROI ...
func (s *Service) GetCampaignROI(ctx context.Context, id int64) (model.CampaignROI, error) {
	return querycache.Fetch(ctx, s.store, CampaignROIKey(id), campaignROIPolicy,
		func(ctx context.Context) (model.CampaignROI, error) {
			return s.client.GetCampaignROI(ctx, id)
		},
	)
}

// GetCampaignMetrics ...
func (s *Service) GetCampaignMetrics(
	ctx context.Context, id int64, page model.PageRequest,
) (model.Page[model.Metric], error) {
	return querycache.Fetch(ctx, s.store, CampaignMetricsKey(id, page), campaignMetricsPolicy,
		func(ctx context.Context) (model.Page[model.Metric], error) {
			return s.client.GetCampaignMetrics(ctx, id, page)
		},
	)
}

// GetDashboard ...
func (s *Service) GetDashboard(ctx context.Context) (model.Dashboard, error) {
	return querycache.Fetch(ctx, s.store, DashboardKey(), dashboardPolicy, s.client.GetDashboard)
}

// WatchDashboard calls onResult with the dashboard, then again every refetch interval until ctx is done
func (s *Service) WatchDashboard(ctx context.Context, onResult func(model.Dashboard, error)) {
	querycache.Watch(ctx, s.store, DashboardKey(), dashboardPolicy, s.client.GetDashboard, onResult)
}

// GetCampaignDashboard ...
func (s *Service) GetCampaignDashboard(ctx context.Context, id int64) (model.CampaignDashboard, error) {
	return querycache.Fetch(ctx, s.store, CampaignDashboardKey(id), campaignDashboardPolicy,
		s.campaignDashboardFetch(id),
	)
}

// WatchCampaignDashboard ...
func (s *Service) WatchCampaignDashboard(
	ctx context.Context, id int64, onResult func(model.CampaignDashboard, error),
) {
	querycache.Watch(ctx, s.store, CampaignDashboardKey(id), campaignDashboardPolicy,
		s.campaignDashboardFetch(id), onResult,
	)
}

func (s *Service) campaignDashboardFetch(id int64) querycache.FetchFunc[model.CampaignDashboard] {
	return func(ctx context.Context) (model.CampaignDashboard, error) {
		return s.client.GetCampaignDashboard(ctx, id)
	}
}

// GetCampaignBudget ...
func (s *Service) GetCampaignBudget(ctx context.Context, id int64) (model.Budget, error) {
	return querycache.Fetch(ctx, s.store, CampaignBudgetKey(id), campaignBudgetPolicy,
		func(ctx context.Context) (model.Budget, error) {
			return s.client.GetCampaignBudget(ctx, id)
		},
	)
}

// UpdateCampaignBudget invalidates the budget and the owning campaign
func (s *Service) UpdateCampaignBudget(
	ctx context.Context, id int64, update model.BudgetUpdate,
) (model.Budget, error) {
	return mutate(ctx, s, mutation{
		action:  "update budget",
		success: "Budget updated successfully",
		invalidates: []querycache.Key{
			CampaignBudgetKey(id),
			CampaignDetailKey(id),
			CampaignsKey(),
			CampaignDashboardKey(id),
		},
	}, func(ctx context.Context) (model.Budget, error) {
		return s.client.UpdateCampaignBudget(ctx, id, update)
	})
}
