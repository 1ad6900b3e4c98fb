package backend

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

func newPerformance(c model.Campaign, stats repository.ExecutionStats) model.CampaignPerformance {
	return model.CampaignPerformance{
		CampaignID:   c.ID,
		CampaignName: c.Name,

		TotalExecutions: stats.Total,
		Sent:            stats.Sent,
		Delivered:       stats.Delivered,
		Opened:          stats.Opened,
		Clicked:         stats.Clicked,
		Converted:       stats.Converted,
		Bounced:         stats.Bounced,
		Unsubscribed:    stats.Unsubscribed,
		Failed:          stats.Failed,

		DeliveryRate:   model.SafeRate(stats.Delivered, stats.Sent),
		OpenRate:       model.SafeRate(stats.Opened, stats.Delivered),
		ClickRate:      model.SafeRate(stats.Clicked, stats.Delivered),
		ConversionRate: model.SafeRate(stats.Converted, stats.Sent),

		TotalCost:    stats.Cost,
		TotalRevenue: stats.Revenue,
		ROI:          model.ComputeROI(stats.Cost, stats.Revenue),
	}
}

// sumStats aggregates the stats of every row, returns the zero stats for no rows
func sumStats(rows []repository.ExecutionStats) repository.ExecutionStats {
	result := repository.ExecutionStats{
		Cost:            decimal.Zero,
		Revenue:         decimal.Zero,
		ConversionValue: decimal.Zero,
	}
	for _, r := range rows {
		result.Add(r)
	}
	return result
}

func (s *Service) campaignStats(
	ctx context.Context, id int64, from *time.Time, to *time.Time,
) (repository.ExecutionStats, error) {
	rows, err := s.executionRepo.GetExecutionStats(ctx, repository.StatsFilter{
		CampaignIDs: []int64{id},
		From:        from,
		To:          to,
	})
	if err != nil {
		return repository.ExecutionStats{}, err
	}
	stats := sumStats(rows)
	stats.CampaignID = id
	return stats, nil
}

// GetCampaignPerformance aggregates the executions of a campaign created in [from, to)
func (s *Service) GetCampaignPerformance(
	ctx context.Context, id int64, from *time.Time, to *time.Time,
) (model.CampaignPerformance, error) {
	if from != nil && to != nil && to.Before(*from) {
		return model.CampaignPerformance{}, validationError("endDate must not be before startDate")
	}

	ctx = s.readonly(ctx)
	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return model.CampaignPerformance{}, err
	}
	stats, err := s.campaignStats(ctx, id, from, to)
	if err != nil {
		return model.CampaignPerformance{}, err
	}
	return newPerformance(c, stats), nil
}

// GetOverallPerformance ...
func (s *Service) GetOverallPerformance(ctx context.Context) (model.OverallPerformance, error) {
	ctx = s.readonly(ctx)

	counts, err := s.campaignRepo.CountCampaignsByStatus(ctx)
	if err != nil {
		return model.OverallPerformance{}, err
	}
	rows, err := s.executionRepo.GetExecutionStats(ctx, repository.StatsFilter{})
	if err != nil {
		return model.OverallPerformance{}, err
	}
	stats := sumStats(rows)

	var total int64
	for _, n := range counts {
		total += n
	}

	return model.OverallPerformance{
		TotalCampaigns:  total,
		ActiveCampaigns: counts[model.CampaignStatusActive],
		TotalExecutions: stats.Total,
		Sent:            stats.Sent,
		Delivered:       stats.Delivered,
		Opened:          stats.Opened,
		Clicked:         stats.Clicked,
		Converted:       stats.Converted,

		ConversionRate: model.SafeRate(stats.Converted, stats.Sent),
		TotalCost:      stats.Cost,
		TotalRevenue:   stats.Revenue,
		ROI:            model.ComputeROI(stats.Cost, stats.Revenue),
	}, nil
}

// allPerformances returns the performance of every campaign, ordered by campaign id
func (s *Service) allPerformances(ctx context.Context) ([]model.Campaign, []model.CampaignPerformance, error) {
	campaigns, err := s.campaignRepo.FindCampaignsByStatus(ctx, model.CampaignStatuses...)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.executionRepo.GetExecutionStats(ctx, repository.StatsFilter{})
	if err != nil {
		return nil, nil, err
	}

	statsByCampaign := make(map[int64]repository.ExecutionStats, len(rows))
	for _, r := range rows {
		statsByCampaign[r.CampaignID] = r
	}

	result := make([]model.CampaignPerformance, 0, len(campaigns))
	for _, c := range campaigns {
		stats, ok := statsByCampaign[c.ID]
		if !ok {
			stats = sumStats(nil)
		}
		result = append(result, newPerformance(c, stats))
	}
	return campaigns, result, nil
}

// GetCampaignTypePerformance aggregates campaigns by type, only types having campaigns are returned
func (s *Service) GetCampaignTypePerformance(ctx context.Context) ([]model.CampaignTypePerformance, error) {
	campaigns, performances, err := s.allPerformances(s.readonly(ctx))
	if err != nil {
		return nil, err
	}

	byType := map[model.CampaignType]*model.CampaignTypePerformance{}
	sent := map[model.CampaignType]int64{}
	for i, c := range campaigns {
		p := performances[i]

		t, ok := byType[c.CampaignType]
		if !ok {
			t = &model.CampaignTypePerformance{
				CampaignType: c.CampaignType,
				Revenue:      decimal.Zero,
				Cost:         decimal.Zero,
			}
			byType[c.CampaignType] = t
		}
		t.CampaignCount++
		t.Executions += p.TotalExecutions
		t.Conversions += p.Converted
		t.Revenue = t.Revenue.Add(p.TotalRevenue)
		t.Cost = t.Cost.Add(p.TotalCost)
		sent[c.CampaignType] += p.Sent
	}

	result := make([]model.CampaignTypePerformance, 0, len(byType))
	for _, campaignType := range model.CampaignTypes {
		t, ok := byType[campaignType]
		if !ok {
			continue
		}
		t.ConversionRate = model.SafeRate(t.Conversions, sent[campaignType])
		result = append(result, *t)
	}
	return result, nil
}

// GetCampaignROI ...
func (s *Service) GetCampaignROI(ctx context.Context, id int64) (model.CampaignROI, error) {
	ctx = s.readonly(ctx)
	if _, err := s.getCampaign(ctx, id); err != nil {
		return model.CampaignROI{}, err
	}
	stats, err := s.campaignStats(ctx, id, nil, nil)
	if err != nil {
		return model.CampaignROI{}, err
	}
	return model.CampaignROI{
		CampaignID:      id,
		TotalCost:       stats.Cost,
		TotalRevenue:    stats.Revenue,
		ConversionValue: stats.ConversionValue,
		ROI:             model.ComputeROI(stats.Cost, stats.Revenue),
	}, nil
}

// GetCampaignMetrics lists the metrics of a campaign, most recent first
func (s *Service) GetCampaignMetrics(
	ctx context.Context, id int64, page model.PageRequest,
) (model.Page[model.Metric], error) {
	ctx = s.readonly(ctx)
	if _, err := s.getCampaign(ctx, id); err != nil {
		return model.Page[model.Metric]{}, err
	}

	page = page.Normalize()
	metrics, total, err := s.metricRepo.ListMetricsByCampaign(ctx, id, page)
	if err != nil {
		return model.Page[model.Metric]{}, err
	}
	return model.NewPage(metrics, page, total), nil
}

// topCampaigns orders by revenue then conversion rate, ties by campaign id
func topCampaigns(performances []model.CampaignPerformance, n int) []model.CampaignPerformance {
	sorted := make([]model.CampaignPerformance, len(performances))
	copy(sorted, performances)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if cmp := a.TotalRevenue.Cmp(b.TotalRevenue); cmp != 0 {
			return cmp > 0
		}
		return a.ConversionRate > b.ConversionRate
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// GetDashboard ...
func (s *Service) GetDashboard(ctx context.Context) (model.Dashboard, error) {
	overall, err := s.GetOverallPerformance(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	ctx = s.readonly(ctx)
	counts, err := s.campaignRepo.CountCampaignsByStatus(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	_, performances, err := s.allPerformances(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	recent, err := s.executionRepo.FindExecutions(ctx, repository.ExecutionFilter{
		Recent: true,
		Limit:  dashboardRecentExecutions,
	})
	if err != nil {
		return model.Dashboard{}, err
	}
	_, overBudget, err := s.campaignRepo.ListOverBudgetCampaigns(ctx, model.PageRequest{Page: 0, Size: 1})
	if err != nil {
		return model.Dashboard{}, err
	}

	if recent == nil {
		recent = []model.Execution{}
	}
	return model.Dashboard{
		Overall:          overall,
		StatusCounts:     counts,
		TopCampaigns:     topCampaigns(performances, dashboardTopCampaigns),
		RecentExecutions: recent,
		OverBudgetCount:  overBudget,
		GeneratedAt:      s.now(),
	}, nil
}

// GetCampaignDashboard ...
func (s *Service) GetCampaignDashboard(ctx context.Context, id int64) (model.CampaignDashboard, error) {
	ctx = s.readonly(ctx)

	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return model.CampaignDashboard{}, err
	}
	stats, err := s.campaignStats(ctx, id, nil, nil)
	if err != nil {
		return model.CampaignDashboard{}, err
	}
	recent, err := s.executionRepo.FindExecutions(ctx, repository.ExecutionFilter{
		CampaignID: id,
		Recent:     true,
		Limit:      dashboardRecentExecutions,
	})
	if err != nil {
		return model.CampaignDashboard{}, err
	}
	metrics, _, err := s.metricRepo.ListMetricsByCampaign(ctx, id, model.PageRequest{
		Page: 0,
		Size: dashboardRecentMetrics,
	})
	if err != nil {
		return model.CampaignDashboard{}, err
	}

	if recent == nil {
		recent = []model.Execution{}
	}
	if metrics == nil {
		metrics = []model.Metric{}
	}
	return model.CampaignDashboard{
		Campaign:         c,
		Performance:      newPerformance(c, stats),
		Budget:           model.ComputeBudget(c, stats.Cost),
		RecentExecutions: recent,
		RecentMetrics:    metrics,
		GeneratedAt:      s.now(),
	}, nil
}

// GetCampaignBudget ...
func (s *Service) GetCampaignBudget(ctx context.Context, id int64) (model.Budget, error) {
	ctx = s.readonly(ctx)
	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return model.Budget{}, err
	}
	stats, err := s.campaignStats(ctx, id, nil, nil)
	if err != nil {
		return model.Budget{}, err
	}
	return model.ComputeBudget(c, stats.Cost), nil
}

// UpdateCampaignBudget sets the budget limit and the cost per send, a null value removes it
func (s *Service) UpdateCampaignBudget(ctx context.Context, id int64, update model.BudgetUpdate) (model.Budget, error) {
	if err := validateMoney("budgetLimit", update.BudgetLimit); err != nil {
		return model.Budget{}, err
	}
	if err := validateMoney("costPerSend", update.CostPerSend); err != nil {
		return model.Budget{}, err
	}

	var result model.Budget
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		c, err := s.lockCampaign(ctx, id)
		if err != nil {
			return err
		}

		c.BudgetLimit = update.BudgetLimit
		c.CostPerSend = update.CostPerSend
		c.UpdatedAt = s.now()
		if err := s.campaignRepo.UpdateCampaign(ctx, c); err != nil {
			return err
		}

		stats, err := s.campaignStats(ctx, id, nil, nil)
		if err != nil {
			return err
		}
		result = model.ComputeBudget(c, stats.Cost)
		return nil
	})
	return result, err
}
