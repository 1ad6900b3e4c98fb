package marketing

import (
	"context"
	"time"

	"github.com/QuangTung97/marketing/model"
	"github.com/shopspring/decimal"
)

// BasePath of the marketing HTTP surface
const BasePath = "/api/marketing"

// IService is the typed surface of the marketing backend.
// Every method issues exactly one HTTP call and performs no retries.
type IService interface {
	CreateCampaign(ctx context.Context, campaign model.Campaign) (model.Campaign, error)
	GetAllCampaigns(ctx context.Context, params ListParams) (model.Page[model.Campaign], error)
	GetCampaignByID(ctx context.Context, id int64) (model.Campaign, error)
	UpdateCampaign(ctx context.Context, id int64, campaign model.Campaign) (model.Campaign, error)
	DeleteCampaign(ctx context.Context, id int64) error
	SearchCampaigns(ctx context.Context, query string, page model.PageRequest) (model.Page[model.Campaign], error)
	GetCampaignsByStatus(
		ctx context.Context, status model.CampaignStatus, page model.PageRequest,
	) (model.Page[model.Campaign], error)
	GetCampaignsByType(
		ctx context.Context, campaignType model.CampaignType, page model.PageRequest,
	) (model.Page[model.Campaign], error)
	GetCampaignsOverBudget(ctx context.Context, page model.PageRequest) (model.Page[model.Campaign], error)

	ActivateCampaign(ctx context.Context, id int64) (model.Campaign, error)
	PauseCampaign(ctx context.Context, id int64) (model.Campaign, error)
	CompleteCampaign(ctx context.Context, id int64) (model.Campaign, error)
	CancelCampaign(ctx context.Context, id int64) (model.Campaign, error)
	ArchiveCampaign(ctx context.Context, id int64) (model.Campaign, error)
	ScheduleCampaign(ctx context.Context, id int64, scheduledTime time.Time) (model.Campaign, error)

	CreateExecution(ctx context.Context, execution model.Execution) (model.Execution, error)
	GetExecutionsByCampaign(
		ctx context.Context, campaignID int64, page model.PageRequest,
	) (model.Page[model.Execution], error)
	GetExecutionByID(ctx context.Context, id int64) (model.Execution, error)
	GetExecutionsByStatus(
		ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
	) (model.Page[model.Execution], error)
	SendExecution(ctx context.Context, id int64) (model.Execution, error)

	GetCampaignPerformance(ctx context.Context, id int64, r DateRange) (model.CampaignPerformance, error)
	GetOverallPerformance(ctx context.Context) (model.OverallPerformance, error)
	GetCampaignTypePerformance(ctx context.Context) ([]model.CampaignTypePerformance, error)
	GetCampaignROI(ctx context.Context, id int64) (model.CampaignROI, error)
	GetCampaignMetrics(ctx context.Context, id int64, page model.PageRequest) (model.Page[model.Metric], error)

	GetDashboard(ctx context.Context) (model.Dashboard, error)
	GetCampaignDashboard(ctx context.Context, id int64) (model.CampaignDashboard, error)

	GetCampaignBudget(ctx context.Context, id int64) (model.Budget, error)
	UpdateCampaignBudget(ctx context.Context, id int64, update model.BudgetUpdate) (model.Budget, error)

	ProcessScheduled(ctx context.Context) (model.SystemOperationResult, error)
	RetryFailed(ctx context.Context) (model.SystemOperationResult, error)
	OptimizeCampaigns(ctx context.Context) (model.SystemOperationResult, error)
	GetSystemHealth(ctx context.Context) (model.SystemHealth, error)

	// TrackConversion and TrackUnsubscribe are best effort: failures are logged and dropped
	TrackConversion(ctx context.Context, trackingCode string, event string, value decimal.NullDecimal) TrackResult
	TrackUnsubscribe(ctx context.Context, trackingCode string, reason string) TrackResult
}

// SortDirection ...
type SortDirection string

const (
	// SortAsc ...
	SortAsc SortDirection = "asc"

	// SortDesc ...
	SortDesc SortDirection = "desc"
)

// ListParams ...
type ListParams struct {
	model.PageRequest

	SortBy  string
	SortDir SortDirection
}

// DateRange bounds a performance query, a nil bound is open
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// TrackResult is the outcome of a best-effort tracking call
type TrackResult struct {
	Err error
}

// OK ...
func (r TrackResult) OK() bool {
	return r.Err == nil
}
