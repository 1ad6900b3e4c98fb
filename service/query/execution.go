package query

import (
	"context"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// GetExecutionsByCampaign ...
func (s *Service) GetExecutionsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) (model.Page[model.Execution], error) {
	key := CampaignExecutionsKey(campaignID).Append(pageParts(page)...)
	return querycache.Fetch(ctx, s.store, key, campaignExecutionsPolicy,
		func(ctx context.Context) (model.Page[model.Execution], error) {
			return s.client.GetExecutionsByCampaign(ctx, campaignID, page)
		},
	)
}

// GetExecutionByID ...
func (s *Service) GetExecutionByID(ctx context.Context, id int64) (model.Execution, error) {
	return querycache.Fetch(ctx, s.store, ExecutionDetailKey(id), executionDetailPolicy,
		func(ctx context.Context) (model.Execution, error) {
			return s.client.GetExecutionByID(ctx, id)
		},
	)
}

// GetExecutionsByStatus ...
func (s *Service) GetExecutionsByStatus(
	ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
) (model.Page[model.Execution], error) {
	return querycache.Fetch(ctx, s.store, ExecutionStatusKey(status, page), executionStatusPolicy,
		func(ctx context.Context) (model.Page[model.Execution], error) {
			return s.client.GetExecutionsByStatus(ctx, status, page)
		},
	)
}

// CreateExecution ...
func (s *Service) CreateExecution(ctx context.Context, execution model.Execution) (model.Execution, error) {
	return mutate(ctx, s, mutation{
		action:      "create execution",
		success:     "Execution created successfully",
		invalidates: executionScope(execution.CampaignID, 0),
	}, func(ctx context.Context) (model.Execution, error) {
		return s.client.CreateExecution(ctx, execution)
	})
}

// SendExecution invalidates everything derived from execution cost and status
func (s *Service) SendExecution(ctx context.Context, id int64) (model.Execution, error) {
	v, err := mutate(ctx, s, mutation{
		action:  "send execution",
		success: "Execution sent successfully",
		invalidates: []querycache.Key{
			ExecutionDetailKey(id),
			ExecutionsKey(),
			PerformanceKey(),
			MetricsKey(),
			DashboardKey(),
			BudgetKey(),
			CampaignOverBudgetKey(),
			SystemHealthKey(),
		},
		committedOnError: marketing.IsDispatchFailed,
	}, func(ctx context.Context) (model.Execution, error) {
		return s.client.SendExecution(ctx, id)
	})
	if err == nil && v.CampaignID != 0 {
		s.invalidate(CampaignDetailKey(v.CampaignID))
	}
	return v, err
}
