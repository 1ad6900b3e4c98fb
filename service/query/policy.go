package query

import (
	"time"

	"github.com/QuangTung97/marketing/pkg/querycache"
)

func policy(name string, staleTime time.Duration, refetchInterval time.Duration) querycache.Policy {
	return querycache.Policy{
		Name:            name,
		StaleTime:       staleTime,
		RefetchInterval: refetchInterval,
	}
}

// Staleness follows the volatility of the data: lists tolerate more than
// searches, dashboards are refreshed while watched.
var (
	campaignListPolicy       = policy("campaign_list", time.Minute, 0)
	campaignSearchPolicy     = policy("campaign_search", 30*time.Second, 0)
	campaignStatusPolicy     = policy("campaign_by_status", time.Minute, 0)
	campaignTypePolicy       = policy("campaign_by_type", time.Minute, 0)
	campaignOverBudgetPolicy = policy("campaign_over_budget", 30*time.Second, 0)
	campaignDetailPolicy     = policy("campaign_detail", 2*time.Minute, 0)

	campaignExecutionsPolicy = policy("execution_by_campaign", 30*time.Second, 0)
	executionStatusPolicy    = policy("execution_by_status", 30*time.Second, 0)
	executionDetailPolicy    = policy("execution_detail", 2*time.Minute, 0)

	campaignPerformancePolicy = policy("campaign_performance", 5*time.Minute, 0)
	overallPerformancePolicy  = policy("overall_performance", 5*time.Minute, 0)
	typePerformancePolicy     = policy("campaign_type_performance", 5*time.Minute, 0)
	campaignROIPolicy         = policy("campaign_roi", 5*time.Minute, 0)
	campaignMetricsPolicy     = policy("campaign_metrics", 5*time.Minute, 0)

	dashboardPolicy         = policy("dashboard", 30*time.Second, time.Minute)
	campaignDashboardPolicy = policy("campaign_dashboard", 30*time.Second, time.Minute)

	campaignBudgetPolicy = policy("campaign_budget", 2*time.Minute, 0)

	systemHealthPolicy = policy("system_health", time.Minute, 5*time.Minute)
)
