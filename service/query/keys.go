package query

import (
	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

// RootKey is the ancestor of every key of the marketing domain
var RootKey = querycache.NewKey("marketing")

func pageParts(page model.PageRequest) []interface{} {
	p := page.Normalize()
	return []interface{}{p.Page, p.Size}
}

// CampaignsKey is the parent collection of every campaign query
func CampaignsKey() querycache.Key {
	return RootKey.Append("campaigns")
}

// CampaignListKey ...
func CampaignListKey(params marketing.ListParams) querycache.Key {
	return CampaignsKey().Append("list").
		Append(pageParts(params.PageRequest)...).
		Append(params.SortBy, string(params.SortDir))
}

// CampaignDetailKey ...
func CampaignDetailKey(id int64) querycache.Key {
	return CampaignsKey().Append("detail", id)
}

// CampaignSearchKey ...
func CampaignSearchKey(query string, page model.PageRequest) querycache.Key {
	return CampaignsKey().Append("search", query).Append(pageParts(page)...)
}

// CampaignStatusKey ...
func CampaignStatusKey(status model.CampaignStatus, page model.PageRequest) querycache.Key {
	return CampaignsKey().Append("status", string(status)).Append(pageParts(page)...)
}

// CampaignTypeKey ...
func CampaignTypeKey(campaignType model.CampaignType, page model.PageRequest) querycache.Key {
	return CampaignsKey().Append("type", string(campaignType)).Append(pageParts(page)...)
}

// CampaignOverBudgetKey ...
func CampaignOverBudgetKey() querycache.Key {
	return CampaignsKey().Append("over-budget")
}

// ExecutionsKey is the parent collection of every execution query
func ExecutionsKey() querycache.Key {
	return RootKey.Append("executions")
}

// CampaignExecutionsKey covers every page of the executions of one campaign
func CampaignExecutionsKey(campaignID int64) querycache.Key {
	return ExecutionsKey().Append("campaign", campaignID)
}

// ExecutionDetailKey ...
func ExecutionDetailKey(id int64) querycache.Key {
	return ExecutionsKey().Append("detail", id)
}

// ExecutionStatusKey ...
func ExecutionStatusKey(status model.ExecutionStatus, page model.PageRequest) querycache.Key {
	return ExecutionsKey().Append("status", string(status)).Append(pageParts(page)...)
}

// PerformanceKey ...
func PerformanceKey() querycache.Key {
	return RootKey.Append("performance")
}

// CampaignPerformanceKey ...
func CampaignPerformanceKey(id int64, r marketing.DateRange) querycache.Key {
	return PerformanceKey().Append("campaign", id, r.Start, r.End)
}

// OverallPerformanceKey ...
func OverallPerformanceKey() querycache.Key {
	return PerformanceKey().Append("overall")
}

// CampaignTypePerformanceKey ...
func CampaignTypePerformanceKey() querycache.Key {
	return PerformanceKey().Append("campaign-types")
}

// CampaignROIKey ...
func CampaignROIKey(id int64) querycache.Key {
	return PerformanceKey().Append("roi", id)
}

// MetricsKey ...
func MetricsKey() querycache.Key {
	return RootKey.Append("metrics")
}

// CampaignMetricsKey ...
func CampaignMetricsKey(id int64, page model.PageRequest) querycache.Key {
	return MetricsKey().Append(id).Append(pageParts(page)...)
}

// DashboardKey ...
func DashboardKey() querycache.Key {
	return RootKey.Append("dashboard")
}

// CampaignDashboardKey ...
func CampaignDashboardKey(id int64) querycache.Key {
	return DashboardKey().Append("campaign", id)
}

// BudgetKey ...
func BudgetKey() querycache.Key {
	return RootKey.Append("budget")
}

// CampaignBudgetKey ...
func CampaignBudgetKey(id int64) querycache.Key {
	return BudgetKey().Append(id)
}

// SystemHealthKey ...
func SystemHealthKey() querycache.Key {
	return RootKey.Append("system", "health")
}
