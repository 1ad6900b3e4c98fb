package marketing

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/QuangTung97/marketing/model"
)

// CreateCampaign ...
func (c *Client) CreateCampaign(ctx context.Context, campaign model.Campaign) (model.Campaign, error) {
	var out model.Campaign
	err := c.do(ctx, request{
		op:     "CreateCampaign",
		method: http.MethodPost,
		path:   "/campaigns",
		body:   campaign,
	}, &out)
	return out, err
}

// GetAllCampaigns ...
func (c *Client) GetAllCampaigns(ctx context.Context, params ListParams) (model.Page[model.Campaign], error) {
	query := pageQuery(params.PageRequest)
	if params.SortBy != "" {
		query.Set("sortBy", params.SortBy)
	}
	if params.SortDir != "" {
		query.Set("sortDir", string(params.SortDir))
	}

	var out model.Page[model.Campaign]
	err := c.do(ctx, request{
		op:     "GetAllCampaigns",
		method: http.MethodGet,
		path:   "/campaigns",
		query:  query,
	}, &out)
	return out, err
}

// GetCampaignByID ...
func (c *Client) GetCampaignByID(ctx context.Context, id int64) (model.Campaign, error) {
	var out model.Campaign
	err := c.do(ctx, request{
		op:     "GetCampaignByID",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d", id),
	}, &out)
	return out, err
}

// UpdateCampaign ...
func (c *Client) UpdateCampaign(ctx context.Context, id int64, campaign model.Campaign) (model.Campaign, error) {
	var out model.Campaign
	err := c.do(ctx, request{
		op:     "UpdateCampaign",
		method: http.MethodPut,
		path:   idPath("/campaigns/%d", id),
		body:   campaign,
	}, &out)
	return out, err
}

// DeleteCampaign ...
func (c *Client) DeleteCampaign(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		op:     "DeleteCampaign",
		method: http.MethodDelete,
		path:   idPath("/campaigns/%d", id),
	}, nil)
}

// SearchCampaigns ...
func (c *Client) SearchCampaigns(
	ctx context.Context, query string, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	q := pageQuery(page)
	q.Set("query", query)

	var out model.Page[model.Campaign]
	err := c.do(ctx, request{
		op:     "SearchCampaigns",
		method: http.MethodGet,
		path:   "/campaigns/search",
		query:  q,
	}, &out)
	return out, err
}

// GetCampaignsByStatus ...
func (c *Client) GetCampaignsByStatus(
	ctx context.Context, status model.CampaignStatus, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	var out model.Page[model.Campaign]
	err := c.do(ctx, request{
		op:     "GetCampaignsByStatus",
		method: http.MethodGet,
		path:   "/campaigns/status/" + url.PathEscape(string(status)),
		query:  pageQuery(page),
	}, &out)
	return out, err
}

// GetCampaignsByType ...
func (c *Client) GetCampaignsByType(
	ctx context.Context, campaignType model.CampaignType, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	var out model.Page[model.Campaign]
	err := c.do(ctx, request{
		op:     "GetCampaignsByType",
		method: http.MethodGet,
		path:   "/campaigns/type/" + url.PathEscape(string(campaignType)),
		query:  pageQuery(page),
	}, &out)
	return out, err
}

// GetCampaignsOverBudget lists campaigns whose execution cost exceeds the budget limit
func (c *Client) GetCampaignsOverBudget(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	var out model.Page[model.Campaign]
	err := c.do(ctx, request{
		op:     "GetCampaignsOverBudget",
		method: http.MethodGet,
		path:   "/campaigns/over-budget",
		query:  pageQuery(page),
	}, &out)
	return out, err
}

func (c *Client) transition(
	ctx context.Context, op string, id int64, action model.CampaignAction, query url.Values,
) (model.Campaign, error) {
	var out model.Campaign
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   idPath("/campaigns/%d/", id) + string(action),
		query:  query,
	}, &out)
	return out, err
}

// ActivateCampaign ...
func (c *Client) ActivateCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return c.transition(ctx, "ActivateCampaign", id, model.CampaignActionActivate, nil)
}

// PauseCampaign ...
func (c *Client) PauseCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return c.transition(ctx, "PauseCampaign", id, model.CampaignActionPause, nil)
}

// CompleteCampaign ...
func (c *Client) CompleteCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return c.transition(ctx, "CompleteCampaign", id, model.CampaignActionComplete, nil)
}

// CancelCampaign ...
func (c *Client) CancelCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return c.transition(ctx, "CancelCampaign", id, model.CampaignActionCancel, nil)
}

// ArchiveCampaign ...
func (c *Client) ArchiveCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return c.transition(ctx, "ArchiveCampaign", id, model.CampaignActionArchive, nil)
}

// ScheduleCampaign ...
func (c *Client) ScheduleCampaign(ctx context.Context, id int64, scheduledTime time.Time) (model.Campaign, error) {
	q := url.Values{}
	q.Set("scheduledTime", scheduledTime.Format(time.RFC3339))
	return c.transition(ctx, "ScheduleCampaign", id, model.CampaignActionSchedule, q)
}
