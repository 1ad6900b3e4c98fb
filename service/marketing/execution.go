package marketing

import (
	"context"
	"net/http"
	"net/url"

	"github.com/QuangTung97/marketing/model"
)

// CreateExecution ...
func (c *Client) CreateExecution(ctx context.Context, execution model.Execution) (model.Execution, error) {
	var out model.Execution
	err := c.do(ctx, request{
		op:     "CreateExecution",
		method: http.MethodPost,
		path:   "/executions",
		body:   execution,
	}, &out)
	return out, err
}

// GetExecutionsByCampaign ...
func (c *Client) GetExecutionsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) (model.Page[model.Execution], error) {
	var out model.Page[model.Execution]
	err := c.do(ctx, request{
		op:     "GetExecutionsByCampaign",
		method: http.MethodGet,
		path:   idPath("/campaigns/%d/executions", campaignID),
		query:  pageQuery(page),
	}, &out)
	return out, err
}

// GetExecutionByID ...
func (c *Client) GetExecutionByID(ctx context.Context, id int64) (model.Execution, error) {
	var out model.Execution
	err := c.do(ctx, request{
		op:     "GetExecutionByID",
		method: http.MethodGet,
		path:   idPath("/executions/%d", id),
	}, &out)
	return out, err
}

// GetExecutionsByStatus ...
func (c *Client) GetExecutionsByStatus(
	ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
) (model.Page[model.Execution], error) {
	var out model.Page[model.Execution]
	err := c.do(ctx, request{
		op:     "GetExecutionsByStatus",
		method: http.MethodGet,
		path:   "/executions/status/" + url.PathEscape(string(status)),
		query:  pageQuery(page),
	}, &out)
	return out, err
}

// SendExecution ...
func (c *Client) SendExecution(ctx context.Context, id int64) (model.Execution, error) {
	var out model.Execution
	err := c.do(ctx, request{
		op:     "SendExecution",
		method: http.MethodPost,
		path:   idPath("/executions/%d/send", id),
	}, &out)
	return out, err
}
