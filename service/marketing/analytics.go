package marketing

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/QuangTung97/marketing/model"
)

// GetCampaignPerformance ...
func (c *Client) GetCampaignPerformance(
	ctx context.Context, id int64, r DateRange,
) (model.CampaignPerformance, error) {
	q := url.Values{}
	if r.Start != nil {
		q.Set("startDate", r.Start.Format(time.RFC3339))
	}
	if r.End != nil {
		q.Set("endDate", r.End.Format(time.RFC3339))
	}

	var out model.CampaignPerformance
	err := c.do(ctx, request{
		op:     "GetCampaignPerformance",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/performance", id),
		query:  q,
	}, &out)
	return out, err
}

// GetOverallPerformance ...
func (c *Client) GetOverallPerformance(ctx context.Context) (model.OverallPerformance, error) {
	var out model.OverallPerformance
	err := c.do(ctx, request{
		op:     "GetOverallPerformance",
		method: http.MethodGet,
		path:   "/performance/overall",
	}, &out)
	return out, err
}

// GetCampaignTypePerformance returns one entry per campaign type that has campaigns
func (c *Client) GetCampaignTypePerformance(ctx context.Context) ([]model.CampaignTypePerformance, error) {
	var out []model.CampaignTypePerformance
	err := c.do(ctx, request{
		op:     "GetCampaignTypePerformance",
		method: http.MethodGet,
		path:   "/performance/campaign-types",
	}, &out)
	return out, err
}

// GetCampaignROI ...
func (c *Client) GetCampaignROI(ctx context.Context, id int64) (model.CampaignROI, error) {
	var out model.CampaignROI
	err := c.do(ctx, request{
		op:     "GetCampaignROI",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/roi", id),
	}, &out)
	return out, err
}

// GetCampaignMetrics ...
func (c *Client) GetCampaignMetrics(
	ctx context.Context, id int64, page model.PageRequest,
) (model.Page[model.Metric], error) {
	var out model.Page[model.Metric]
	err := c.do(ctx, request{
		op:     "GetCampaignMetrics",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/metrics", id),
		query:  pageQuery(page),
	}, &out)
	return out, err
}

// GetDashboard ...
func (c *Client) GetDashboard(ctx context.Context) (model.Dashboard, error) {
	var out model.Dashboard
	err := c.do(ctx, request{
		op:     "GetDashboard",
		method: http.MethodGet,
		path:   "/dashboard",
	}, &out)
	return out, err
}

// GetCampaignDashboard ...
func (c *Client) GetCampaignDashboard(ctx context.Context, id int64) (model.CampaignDashboard, error) {
	var out model.CampaignDashboard
	err := c.do(ctx, request{
		op:     "GetCampaignDashboard",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/dashboard", id),
	}, &out)
	return out, err
}

// GetCampaignBudget ...
func (c *Client) GetCampaignBudget(ctx context.Context, id int64) (model.Budget, error) {
	var out model.Budget
	err := c.do(ctx, request{
		op:     "GetCampaignBudget",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/budget", id),
	}, &out)
	return out, err
}

// UpdateCampaignBudget ...
func (c *Client) UpdateCampaignBudget(
	ctx context.Context, id int64, update model.BudgetUpdate,
) (model.Budget, error) {
	var out model.Budget
	err := c.do(ctx, request{
		op:     "UpdateCampaignBudget",
		method: http.MethodPut,
		path:   idPath("/campaigns/%d/budget", id),
		body:   update,
	}, &out)
	return out, err
}
