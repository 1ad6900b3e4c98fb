package repository

import (
	"context"

	"github.com/QuangTung97/marketing/model"
)

// Metric ...
type Metric interface {
	InsertMetric(ctx context.Context, metric model.Metric) (int64, error)
	ListMetricsByCampaign(
		ctx context.Context, campaignID int64, page model.PageRequest,
	) ([]model.Metric, int64, error)
}

type metricImpl struct {
}

var _ Metric = &metricImpl{}

// NewMetric ...
func NewMetric() Metric {
	return &metricImpl{}
}

const metricColumns = `id, campaign_id, execution_id, metric_type, metric_name, metric_value,
	count, percentage, dimension1, dimension2, dimension3, time_period,
	period_start, period_end, comparison_value, goal_value, created_at`

// InsertMetric ...
func (m *metricImpl) InsertMetric(ctx context.Context, metric model.Metric) (int64, error) {
	query := `
INSERT INTO campaign_metric (
	campaign_id, execution_id, metric_type, metric_name, metric_value,
	count, percentage, dimension1, dimension2, dimension3, time_period,
	period_start, period_end, comparison_value, goal_value, created_at
) VALUES (
	:campaign_id, :execution_id, :metric_type, :metric_name, :metric_value,
	:count, :percentage, :dimension1, :dimension2, :dimension3, :time_period,
	:period_start, :period_end, :comparison_value, :goal_value, :created_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, metric)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListMetricsByCampaign returns the most recent metrics first
func (m *metricImpl) ListMetricsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) ([]model.Metric, int64, error) {
	db := GetReadonly(ctx)

	var total int64
	err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM campaign_metric WHERE campaign_id = ?`, campaignID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + metricColumns + ` FROM campaign_metric WHERE campaign_id = ?
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	var result []model.Metric
	err = db.SelectContext(ctx, &result, query, campaignID, page.Size, page.Offset())
	return result, total, err
}
