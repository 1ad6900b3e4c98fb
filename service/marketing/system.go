package marketing

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
)

func (c *Client) systemOperation(ctx context.Context, op string, name string) (model.SystemOperationResult, error) {
	var out model.SystemOperationResult
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/system/" + name,
	}, &out)
	return out, err
}

// ProcessScheduled activates due campaigns and sends due executions
func (c *Client) ProcessScheduled(ctx context.Context) (model.SystemOperationResult, error) {
	return c.systemOperation(ctx, "ProcessScheduled", "process-scheduled")
}

// RetryFailed ...
func (c *Client) RetryFailed(ctx context.Context) (model.SystemOperationResult, error) {
	return c.systemOperation(ctx, "RetryFailed", "retry-failed")
}

// OptimizeCampaigns ...
func (c *Client) OptimizeCampaigns(ctx context.Context) (model.SystemOperationResult, error) {
	return c.systemOperation(ctx, "OptimizeCampaigns", "optimize")
}

// GetSystemHealth ...
func (c *Client) GetSystemHealth(ctx context.Context) (model.SystemHealth, error) {
	var out model.SystemHealth
	err := c.do(ctx, request{
		op:     "GetSystemHealth",
		method: http.MethodGet,
		path:   "/system/health",
	}, &out)
	return out, err
}

// TrackConversion ...
func (c *Client) TrackConversion(
	ctx context.Context, trackingCode string, event string, value decimal.NullDecimal,
) TrackResult {
	q := url.Values{}
	if event != "" {
		q.Set("event", event)
	}
	if value.Valid {
		q.Set("value", value.Decimal.String())
	}
	err := c.do(ctx, request{
		op:     "TrackConversion",
		method: http.MethodPost,
		path:   "/track/conversion/" + url.PathEscape(trackingCode),
		query:  q,
	}, nil)
	return c.trackResult("conversion", trackingCode, err)
}

// TrackUnsubscribe ...
func (c *Client) TrackUnsubscribe(ctx context.Context, trackingCode string, reason string) TrackResult {
	q := url.Values{}
	if reason != "" {
		q.Set("reason", reason)
	}
	err := c.do(ctx, request{
		op:     "TrackUnsubscribe",
		method: http.MethodPost,
		path:   "/track/unsubscribe/" + url.PathEscape(trackingCode),
		query:  q,
	}, nil)
	return c.trackResult("unsubscribe", trackingCode, err)
}

func (c *Client) trackResult(kind string, trackingCode string, err error) TrackResult {
	if err != nil {
		c.opts.logger.Warn("Dropped tracking event",
			zap.String("kind", kind),
			zap.String("tracking_code", trackingCode),
			zap.Error(err),
		)
	}
	return TrackResult{Err: err}
}
