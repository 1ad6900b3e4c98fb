package model

import "time"

// Metric is a measurement attached to a campaign and optionally an execution
type Metric struct {
	ID          int64      `db:"id" json:"id"`
	CampaignID  int64      `db:"campaign_id" json:"campaignId"`
	ExecutionID *int64     `db:"execution_id" json:"executionId,omitempty"`
	MetricType  MetricType `db:"metric_type" json:"metricType"`
	MetricName  string     `db:"metric_name" json:"metricName"`

	MetricValue float64 `db:"metric_value" json:"metricValue"`
	Count       int64   `db:"count" json:"count"`
	Percentage  float64 `db:"percentage" json:"percentage"`

	Dimension1 string `db:"dimension1" json:"dimension1,omitempty"`
	Dimension2 string `db:"dimension2" json:"dimension2,omitempty"`
	Dimension3 string `db:"dimension3" json:"dimension3,omitempty"`

	TimePeriod  TimePeriod `db:"time_period" json:"timePeriod"`
	PeriodStart *time.Time `db:"period_start" json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `db:"period_end" json:"periodEnd,omitempty"`

	ComparisonValue *float64 `db:"comparison_value" json:"comparisonValue,omitempty"`
	GoalValue       *float64 `db:"goal_value" json:"goalValue,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MetricType ...
type MetricType string

//revive:disable:exported
const (
	MetricTypeDelivery    MetricType = "DELIVERY"
	MetricTypeEngagement  MetricType = "ENGAGEMENT"
	MetricTypeConversion  MetricType = "CONVERSION"
	MetricTypeRevenue     MetricType = "REVENUE"
	MetricTypeCost        MetricType = "COST"
	MetricTypePerformance MetricType = "PERFORMANCE"
	MetricTypeAudience    MetricType = "AUDIENCE"
	MetricTypeBehavioral  MetricType = "BEHAVIORAL"
	MetricTypeTemporal    MetricType = "TEMPORAL"
	MetricTypeGeographic  MetricType = "GEOGRAPHIC"
	MetricTypeDevice      MetricType = "DEVICE"
	MetricTypeChannel     MetricType = "CHANNEL"
)

//revive:enable:exported

// MetricTypes ...
var MetricTypes = []MetricType{
	MetricTypeDelivery,
	MetricTypeEngagement,
	MetricTypeConversion,
	MetricTypeRevenue,
	MetricTypeCost,
	MetricTypePerformance,
	MetricTypeAudience,
	MetricTypeBehavioral,
	MetricTypeTemporal,
	MetricTypeGeographic,
	MetricTypeDevice,
	MetricTypeChannel,
}

// UnmarshalJSON ...
func (t *MetricType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("MetricType", MetricTypes, data, t)
}

// TimePeriod classifies the period a metric covers
type TimePeriod string

//revive:disable:exported
const (
	TimePeriodHourly    TimePeriod = "HOURLY"
	TimePeriodDaily     TimePeriod = "DAILY"
	TimePeriodWeekly    TimePeriod = "WEEKLY"
	TimePeriodMonthly   TimePeriod = "MONTHLY"
	TimePeriodQuarterly TimePeriod = "QUARTERLY"
	TimePeriodYearly    TimePeriod = "YEARLY"
	TimePeriodAllTime   TimePeriod = "ALL_TIME"
)

//revive:enable:exported

// TimePeriods ...
var TimePeriods = []TimePeriod{
	TimePeriodHourly,
	TimePeriodDaily,
	TimePeriodWeekly,
	TimePeriodMonthly,
	TimePeriodQuarterly,
	TimePeriodYearly,
	TimePeriodAllTime,
}

// UnmarshalJSON ...
func (p *TimePeriod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("TimePeriod", TimePeriods, data, p)
}
