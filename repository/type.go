package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
)

// CampaignFilter selects campaigns, zero fields match everything
type CampaignFilter struct {
	// Query matches name or description, case-insensitively
	Query  string
	Status model.CampaignStatus
	Type   model.CampaignType
}

// SortField is a sortable campaign attribute, named as in the JSON payloads
type SortField string

// CampaignSortFields maps sort fields to their columns
var CampaignSortFields = map[SortField]string{
	"id":           "id",
	"name":         "name",
	"status":       "status",
	"campaignType": "campaign_type",
	"priority":     "priority",
	"startDate":    "start_date",
	"endDate":      "end_date",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// SortOrder ...
type SortOrder struct {
	Field SortField
	Desc  bool
}

// Column returns the column of the sort field, id for unknown fields
func (o SortOrder) Column() string {
	col, ok := CampaignSortFields[o.Field]
	if !ok {
		return "id"
	}
	return col
}

// ExecutionFilter ...
type ExecutionFilter struct {
	CampaignID int64
	Statuses   []model.ExecutionStatus

	// ScheduledBefore matches executions with scheduled_at <= ScheduledBefore
	ScheduledBefore *time.Time

	// Retryable matches only executions with retry_count < max_retries
	Retryable bool

	// Limit zero means no limit, results are ordered by id
	Limit int

	// Recent orders by created_at desc instead
	Recent bool
}

// StatsFilter ...
type StatsFilter struct {
	// CampaignIDs empty means every campaign
	CampaignIDs []int64

	From *time.Time
	To   *time.Time
}

// ExecutionStats aggregates the executions of one campaign. Funnel counts
// are computed from the pipeline timestamps.
type ExecutionStats struct {
	CampaignID int64 `db:"campaign_id"`

	Total        int64 `db:"total"`
	Sent         int64 `db:"sent"`
	Delivered    int64 `db:"delivered"`
	Opened       int64 `db:"opened"`
	Clicked      int64 `db:"clicked"`
	Converted    int64 `db:"converted"`
	Bounced      int64 `db:"bounced"`
	Unsubscribed int64 `db:"unsubscribed"`
	Failed       int64 `db:"failed"`

	Cost            decimal.Decimal `db:"cost"`
	Revenue         decimal.Decimal `db:"revenue"`
	ConversionValue decimal.Decimal `db:"conversion_value"`
}

// Add accumulates other into s
func (s *ExecutionStats) Add(other ExecutionStats) {
	s.Total += other.Total
	s.Sent += other.Sent
	s.Delivered += other.Delivered
	s.Opened += other.Opened
	s.Clicked += other.Clicked
	s.Converted += other.Converted
	s.Bounced += other.Bounced
	s.Unsubscribed += other.Unsubscribed
	s.Failed += other.Failed
	s.Cost = s.Cost.Add(other.Cost)
	s.Revenue = s.Revenue.Add(other.Revenue)
	s.ConversionValue = s.ConversionValue.Add(other.ConversionValue)
}

// StatusCount ...
type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}
