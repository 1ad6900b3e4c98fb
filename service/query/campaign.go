package query

import (
	"context"
	"time"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// GetAllCampaigns ...
func (s *Service) GetAllCampaigns(ctx context.Context, params marketing.ListParams) (model.Page[model.Campaign], error) {
	return querycache.Fetch(ctx, s.store, CampaignListKey(params), campaignListPolicy,
		func(ctx context.Context) (model.Page[model.Campaign], error) {
			return s.client.GetAllCampaigns(ctx, params)
		},
	)
}

// GetCampaignByID ...
func (s *Service) GetCampaignByID(ctx context.Context, id int64) (model.Campaign, error) {
	return querycache.Fetch(ctx, s.store, CampaignDetailKey(id), campaignDetailPolicy,
		func(ctx context.Context) (model.Campaign, error) {
			return s.client.GetCampaignByID(ctx, id)
		},
	)
}

// SearchCampaigns ...
func (s *Service) SearchCampaigns(
	ctx context.Context, query string, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	return querycache.Fetch(ctx, s.store, CampaignSearchKey(query, page), campaignSearchPolicy,
		func(ctx context.Context) (model.Page[model.Campaign], error) {
			return s.client.SearchCampaigns(ctx, query, page)
		},
	)
}

// GetCampaignsByStatus ...
func (s *Service) GetCampaignsByStatus(
	ctx context.Context, status model.CampaignStatus, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	return querycache.Fetch(ctx, s.store, CampaignStatusKey(status, page), campaignStatusPolicy,
		func(ctx context.Context) (model.Page[model.Campaign], error) {
			return s.client.GetCampaignsByStatus(ctx, status, page)
		},
	)
}

// GetCampaignsByType ...
func (s *Service) GetCampaignsByType(
	ctx context.Context, campaignType model.CampaignType, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	return querycache.Fetch(ctx, s.store, CampaignTypeKey(campaignType, page), campaignTypePolicy,
		func(ctx context.Context) (model.Page[model.Campaign], error) {
			return s.client.GetCampaignsByType(ctx, campaignType, page)
		},
	)
}

// GetCampaignsOverBudget ...
func (s *Service) GetCampaignsOverBudget(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	key := CampaignOverBudgetKey().Append(pageParts(page)...)
	return querycache.Fetch(ctx, s.store, key, campaignOverBudgetPolicy,
		func(ctx context.Context) (model.Page[model.Campaign], error) {
			return s.client.GetCampaignsOverBudget(ctx, page)
		},
	)
}

// CreateCampaign ...
func (s *Service) CreateCampaign(ctx context.Context, campaign model.Campaign) (model.Campaign, error) {
	return mutate(ctx, s, mutation{
		action:      "create campaign",
		success:     "Campaign created successfully",
		invalidates: []querycache.Key{CampaignsKey(), DashboardKey(), OverallPerformanceKey()},
	}, func(ctx context.Context) (model.Campaign, error) {
		return s.client.CreateCampaign(ctx, campaign)
	})
}

// UpdateCampaign ...
func (s *Service) UpdateCampaign(ctx context.Context, id int64, campaign model.Campaign) (model.Campaign, error) {
	return mutate(ctx, s, mutation{
		action:      "update campaign",
		success:     "Campaign updated successfully",
		invalidates: append(campaignScope(id), CampaignBudgetKey(id)),
	}, func(ctx context.Context) (model.Campaign, error) {
		return s.client.UpdateCampaign(ctx, id, campaign)
	})
}

// DeleteCampaign ...
func (s *Service) DeleteCampaign(ctx context.Context, id int64) error {
	_, err := mutate(ctx, s, mutation{
		action:      "delete campaign",
		success:     "Campaign deleted successfully",
		invalidates: append(campaignScope(id), CampaignBudgetKey(id)),
	}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.DeleteCampaign(ctx, id)
	})
	return err
}

func (s *Service) transition(
	ctx context.Context, id int64, action string, success string,
	fn func(ctx context.Context, id int64) (model.Campaign, error),
) (model.Campaign, error) {
	return mutate(ctx, s, mutation{
		action:      action,
		success:     success,
		invalidates: campaignScope(id),
	}, func(ctx context.Context) (model.Campaign, error) {
		return fn(ctx, id)
	})
}

// ActivateCampaign ...
func (s *Service) ActivateCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.transition(ctx, id, "activate campaign", "Campaign activated successfully", s.client.ActivateCampaign)
}

// PauseCampaign ...
func (s *Service) PauseCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.transition(ctx, id, "pause campaign", "Campaign paused successfully", s.client.PauseCampaign)
}

// CompleteCampaign ...
func (s *Service) CompleteCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.transition(ctx, id, "complete campaign", "Campaign completed successfully", s.client.CompleteCampaign)
}

// CancelCampaign ...
func (s *Service) CancelCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.transition(ctx, id, "cancel campaign", "Campaign cancelled successfully", s.client.CancelCampaign)
}

// ArchiveCampaign ...
func (s *Service) ArchiveCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.transition(ctx, id, "archive campaign", "Campaign archived successfully", s.client.ArchiveCampaign)
}

// ScheduleCampaign ...
func (s *Service) ScheduleCampaign(ctx context.Context, id int64, scheduledTime time.Time) (model.Campaign, error) {
	return s.transition(ctx, id, "schedule campaign", "Campaign scheduled successfully",
		func(ctx context.Context, id int64) (model.Campaign, error) {
			return s.client.ScheduleCampaign(ctx, id, scheduledTime)
		},
	)
}
