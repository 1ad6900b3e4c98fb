package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignPerformance aggregates the executions of one campaign
type CampaignPerformance struct {
	CampaignID   int64  `json:"campaignId"`
	CampaignName string `json:"campaignName"`

	TotalExecutions int64 `json:"totalExecutions"`
	Sent            int64 `json:"sent"`
	Delivered       int64 `json:"delivered"`
	Opened          int64 `json:"opened"`
	Clicked         int64 `json:"clicked"`
	Converted       int64 `json:"converted"`
	Bounced         int64 `json:"bounced"`
	Unsubscribed    int64 `json:"unsubscribed"`
	Failed          int64 `json:"failed"`

	DeliveryRate   float64 `json:"deliveryRate"`
	OpenRate       float64 `json:"openRate"`
	ClickRate      float64 `json:"clickRate"`
	ConversionRate float64 `json:"conversionRate"`

	TotalCost    decimal.Decimal `json:"totalCost"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	ROI          float64         `json:"roi"`
}

// OverallPerformance aggregates every campaign
type OverallPerformance struct {
	TotalCampaigns  int64 `json:"totalCampaigns"`
	ActiveCampaigns int64 `json:"activeCampaigns"`
	TotalExecutions int64 `json:"totalExecutions"`
	Sent            int64 `json:"sent"`
	Delivered       int64 `json:"delivered"`
	Opened          int64 `json:"opened"`
	Clicked         int64 `json:"clicked"`
	Converted       int64 `json:"converted"`

	ConversionRate float64         `json:"conversionRate"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	ROI            float64         `json:"roi"`
}

// CampaignTypePerformance aggregates campaigns of the same type
type CampaignTypePerformance struct {
	CampaignType   CampaignType    `json:"campaignType"`
	CampaignCount  int64           `json:"campaignCount"`
	Executions     int64           `json:"executions"`
	Conversions    int64           `json:"conversions"`
	ConversionRate float64         `json:"conversionRate"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
}

// CampaignROI ...
type CampaignROI struct {
	CampaignID      int64           `json:"campaignId"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	ConversionValue decimal.Decimal `json:"conversionValue"`
	ROI             float64         `json:"roi"`
}

// Dashboard is the marketing overview
type Dashboard struct {
	Overall          OverallPerformance       `json:"overall"`
	StatusCounts     map[CampaignStatus]int64 `json:"statusCounts"`
	TopCampaigns     []CampaignPerformance    `json:"topCampaigns"`
	RecentExecutions []Execution              `json:"recentExecutions"`
	OverBudgetCount  int64                    `json:"overBudgetCount"`
	GeneratedAt      time.Time                `json:"generatedAt"`
}

// CampaignDashboard is the overview of a single campaign
type CampaignDashboard struct {
	Campaign         Campaign            `json:"campaign"`
	Performance      CampaignPerformance `json:"performance"`
	Budget           Budget              `json:"budget"`
	RecentExecutions []Execution         `json:"recentExecutions"`
	RecentMetrics    []Metric            `json:"recentMetrics"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}

// Budget is the spend state of a campaign
type Budget struct {
	CampaignID  int64               `json:"campaignId"`
	BudgetLimit decimal.NullDecimal `json:"budgetLimit"`
	CostPerSend decimal.NullDecimal `json:"costPerSend"`
	Spent       decimal.Decimal     `json:"spent"`
	Remaining   decimal.NullDecimal `json:"remaining"`
	Utilization float64             `json:"utilization"`
	OverBudget  bool                `json:"overBudget"`
}

// BudgetUpdate is the body of a budget write
type BudgetUpdate struct {
	BudgetLimit decimal.NullDecimal `json:"budgetLimit"`
	CostPerSend decimal.NullDecimal `json:"costPerSend"`
}

// ComputeBudget derives the spend state from the aggregated execution cost
func ComputeBudget(c Campaign, spent decimal.Decimal) Budget {
	b := Budget{
		CampaignID:  c.ID,
		BudgetLimit: c.BudgetLimit,
		CostPerSend: c.CostPerSend,
		Spent:       spent,
	}
	if !c.BudgetLimit.Valid {
		return b
	}

	limit := c.BudgetLimit.Decimal
	b.Remaining = decimal.NullDecimal{Valid: true, Decimal: limit.Sub(spent)}
	b.OverBudget = spent.GreaterThan(limit)
	if limit.IsPositive() {
		b.Utilization, _ = spent.Div(limit).Float64()
	} else if spent.IsPositive() {
		b.Utilization = 1
	}
	return b
}

// HealthStatus ...
type HealthStatus string

const (
	// HealthStatusUp ...
	HealthStatusUp HealthStatus = "UP"

	// HealthStatusDegraded when failed executions pile up
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// SystemHealth ...
type SystemHealth struct {
	Status              HealthStatus `json:"status"`
	ActiveCampaigns     int64        `json:"activeCampaigns"`
	ScheduledCampaigns  int64        `json:"scheduledCampaigns"`
	PendingExecutions   int64        `json:"pendingExecutions"`
	FailedExecutions    int64        `json:"failedExecutions"`
	RetryableExecutions int64        `json:"retryableExecutions"`
	CheckedAt           time.Time    `json:"checkedAt"`
}

// SystemOperationResult is returned by the system endpoints
type SystemOperationResult struct {
	Operation string    `json:"operation"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"startedAt"`
}

// SafeRate returns part / total, or zero for an empty total
func SafeRate(part int64, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// ComputeROI returns (revenue - cost) / cost, zero when nothing was spent
func ComputeROI(cost decimal.Decimal, revenue decimal.Decimal) float64 {
	if !cost.IsPositive() {
		return 0
	}
	roi, _ := revenue.Sub(cost).Div(cost).Float64()
	return roi
}
