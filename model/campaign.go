package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a configured marketing initiative
type Campaign struct {
	ID           int64          `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Description  string         `db:"description" json:"description"`
	CampaignType CampaignType   `db:"campaign_type" json:"campaignType"`
	Status       CampaignStatus `db:"status" json:"status"`

	StartDate *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`

	TargetingRules       string `db:"targeting_rules" json:"targetingRules,omitempty"`
	PersonalizationRules string `db:"personalization_rules" json:"personalizationRules,omitempty"`

	BudgetLimit decimal.NullDecimal `db:"budget_limit" json:"budgetLimit"`
	CostPerSend decimal.NullDecimal `db:"cost_per_send" json:"costPerSend"`

	Priority        int  `db:"priority" json:"priority"`
	AutoOptimize    bool `db:"auto_optimize" json:"autoOptimize"`
	TrackingEnabled bool `db:"tracking_enabled" json:"trackingEnabled"`

	CreatedBy      *int64     `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
	LastExecutedAt *time.Time `db:"last_executed_at" json:"lastExecutedAt,omitempty"`
}

// NullCampaign ...
type NullCampaign struct {
	Valid    bool
	Campaign Campaign
}

// CampaignStatus ...
type CampaignStatus string

const (
	// CampaignStatusDraft is the status of newly created campaigns
	CampaignStatusDraft CampaignStatus = "DRAFT"

	// CampaignStatusScheduled waits for its start date
	CampaignStatusScheduled CampaignStatus = "SCHEDULED"

	// CampaignStatusActive ...
	CampaignStatusActive CampaignStatus = "ACTIVE"

	// CampaignStatusPaused is a reversible hold, reachable only from ACTIVE
	CampaignStatusPaused CampaignStatus = "PAUSED"

	// CampaignStatusCompleted ...
	CampaignStatusCompleted CampaignStatus = "COMPLETED"

	// CampaignStatusCancelled ...
	CampaignStatusCancelled CampaignStatus = "CANCELLED"

	// CampaignStatusArchived is terminal cold storage
	CampaignStatusArchived CampaignStatus = "ARCHIVED"
)

// CampaignStatuses lists every campaign status
var CampaignStatuses = []CampaignStatus{
	CampaignStatusDraft,
	CampaignStatusScheduled,
	CampaignStatusActive,
	CampaignStatusPaused,
	CampaignStatusCompleted,
	CampaignStatusCancelled,
	CampaignStatusArchived,
}

// ParseCampaignStatus ...
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	return parseEnum("CampaignStatus", CampaignStatuses, s)
}

// UnmarshalJSON rejects unknown statuses
func (s *CampaignStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("CampaignStatus", CampaignStatuses, data, s)
}

// CampaignType ...
type CampaignType string

//revive:disable:exported
const (
	CampaignTypeWelcomeSeries    CampaignType = "WELCOME_SERIES"
	CampaignTypeAbandonedBooking CampaignType = "ABANDONED_BOOKING"
	CampaignTypeSeasonal         CampaignType = "SEASONAL"
	CampaignTypeReferral         CampaignType = "REFERRAL"
	CampaignTypeReEngagement     CampaignType = "RE_ENGAGEMENT"
	CampaignTypeBirthday         CampaignType = "BIRTHDAY"
	CampaignTypeAnniversary      CampaignType = "ANNIVERSARY"
	CampaignTypePostExperience   CampaignType = "POST_EXPERIENCE"
	CampaignTypeReviewRequest    CampaignType = "REVIEW_REQUEST"
	CampaignTypeLoyaltyReward    CampaignType = "LOYALTY_REWARD"
	CampaignTypeFlashSale        CampaignType = "FLASH_SALE"
	CampaignTypeNewsletter       CampaignType = "NEWSLETTER"
	CampaignTypeProductLaunch    CampaignType = "PRODUCT_LAUNCH"
	CampaignTypeWinBack          CampaignType = "WIN_BACK"
	CampaignTypeUpsell           CampaignType = "UPSELL"
	CampaignTypeCrossSell        CampaignType = "CROSS_SELL"
)

//revive:enable:exported

// CampaignTypes lists every campaign type
var CampaignTypes = []CampaignType{
	CampaignTypeWelcomeSeries,
	CampaignTypeAbandonedBooking,
	CampaignTypeSeasonal,
	CampaignTypeReferral,
	CampaignTypeReEngagement,
	CampaignTypeBirthday,
	CampaignTypeAnniversary,
	CampaignTypePostExperience,
	CampaignTypeReviewRequest,
	CampaignTypeLoyaltyReward,
	CampaignTypeFlashSale,
	CampaignTypeNewsletter,
	CampaignTypeProductLaunch,
	CampaignTypeWinBack,
	CampaignTypeUpsell,
	CampaignTypeCrossSell,
}

// ParseCampaignType ...
func ParseCampaignType(s string) (CampaignType, error) {
	return parseEnum("CampaignType", CampaignTypes, s)
}

// UnmarshalJSON rejects unknown types
func (t *CampaignType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("CampaignType", CampaignTypes, data, t)
}
