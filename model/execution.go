package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Execution is one concrete send attempt of a campaign
type Execution struct {
	ID            int64           `db:"id" json:"id"`
	CampaignID    int64           `db:"campaign_id" json:"campaignId"`
	UserID        *int64          `db:"user_id" json:"userId,omitempty"`
	ExecutionType ExecutionType   `db:"execution_type" json:"executionType"`
	Status        ExecutionStatus `db:"status" json:"status"`

	RecipientEmail       string `db:"recipient_email" json:"recipientEmail,omitempty"`
	RecipientPhone       string `db:"recipient_phone" json:"recipientPhone,omitempty"`
	RecipientDeviceToken string `db:"recipient_device_token" json:"recipientDeviceToken,omitempty"`

	Subject string `db:"subject" json:"subject,omitempty"`
	Content string `db:"content" json:"content,omitempty"`

	ScheduledAt    *time.Time `db:"scheduled_at" json:"scheduledAt,omitempty"`
	SentAt         *time.Time `db:"sent_at" json:"sentAt,omitempty"`
	DeliveredAt    *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
	OpenedAt       *time.Time `db:"opened_at" json:"openedAt,omitempty"`
	ClickedAt      *time.Time `db:"clicked_at" json:"clickedAt,omitempty"`
	ConvertedAt    *time.Time `db:"converted_at" json:"convertedAt,omitempty"`
	BouncedAt      *time.Time `db:"bounced_at" json:"bouncedAt,omitempty"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribedAt,omitempty"`

	ErrorMessage string `db:"error_message" json:"errorMessage,omitempty"`
	RetryCount   int    `db:"retry_count" json:"retryCount"`
	MaxRetries   int    `db:"max_retries" json:"maxRetries"`

	Cost            decimal.Decimal `db:"cost" json:"cost"`
	Revenue         decimal.Decimal `db:"revenue" json:"revenue"`
	ConversionValue decimal.Decimal `db:"conversion_value" json:"conversionValue"`

	TrackingCode      string `db:"tracking_code" json:"trackingCode,omitempty"`
	ExternalMessageID string `db:"external_message_id" json:"externalMessageId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NullExecution ...
type NullExecution struct {
	Valid     bool
	Execution Execution
}

// CanRetry reports whether a retry may still be attempted
func (e Execution) CanRetry() bool {
	return e.Status == ExecutionStatusFailed && e.RetryCount < e.MaxRetries
}

// ExecutionType is the delivery channel of an execution
type ExecutionType string

//revive:disable:exported
const (
	ExecutionTypeEmail            ExecutionType = "EMAIL"
	ExecutionTypeSMS              ExecutionType = "SMS"
	ExecutionTypePushNotification ExecutionType = "PUSH_NOTIFICATION"
	ExecutionTypeInApp            ExecutionType = "IN_APP"
	ExecutionTypeWebPush          ExecutionType = "WEB_PUSH"
	ExecutionTypeWebhook          ExecutionType = "WEBHOOK"
	ExecutionTypeAPICall          ExecutionType = "API_CALL"
)

//revive:enable:exported

// ExecutionTypes ...
var ExecutionTypes = []ExecutionType{
	ExecutionTypeEmail,
	ExecutionTypeSMS,
	ExecutionTypePushNotification,
	ExecutionTypeInApp,
	ExecutionTypeWebPush,
	ExecutionTypeWebhook,
	ExecutionTypeAPICall,
}

// ParseExecutionType ...
func ParseExecutionType(s string) (ExecutionType, error) {
	return parseEnum("ExecutionType", ExecutionTypes, s)
}

// UnmarshalJSON ...
func (t *ExecutionType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("ExecutionType", ExecutionTypes, data, t)
}

// ExecutionStatus ...
type ExecutionStatus string

//revive:disable:exported
const (
	ExecutionStatusPending      ExecutionStatus = "PENDING"
	ExecutionStatusScheduled    ExecutionStatus = "SCHEDULED"
	ExecutionStatusSending      ExecutionStatus = "SENDING"
	ExecutionStatusSent         ExecutionStatus = "SENT"
	ExecutionStatusDelivered    ExecutionStatus = "DELIVERED"
	ExecutionStatusOpened       ExecutionStatus = "OPENED"
	ExecutionStatusClicked      ExecutionStatus = "CLICKED"
	ExecutionStatusConverted    ExecutionStatus = "CONVERTED"
	ExecutionStatusBounced      ExecutionStatus = "BOUNCED"
	ExecutionStatusFailed       ExecutionStatus = "FAILED"
	ExecutionStatusCancelled    ExecutionStatus = "CANCELLED"
	ExecutionStatusUnsubscribed ExecutionStatus = "UNSUBSCRIBED"
)

//revive:enable:exported

// ExecutionStatuses ...
var ExecutionStatuses = []ExecutionStatus{
	ExecutionStatusPending,
	ExecutionStatusScheduled,
	ExecutionStatusSending,
	ExecutionStatusSent,
	ExecutionStatusDelivered,
	ExecutionStatusOpened,
	ExecutionStatusClicked,
	ExecutionStatusConverted,
	ExecutionStatusBounced,
	ExecutionStatusFailed,
	ExecutionStatusCancelled,
	ExecutionStatusUnsubscribed,
}

// ParseExecutionStatus ...
func ParseExecutionStatus(s string) (ExecutionStatus, error) {
	return parseEnum("ExecutionStatus", ExecutionStatuses, s)
}

// UnmarshalJSON ...
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum("ExecutionStatus", ExecutionStatuses, data, s)
}
