package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/QuangTung97/marketing/model"
)

// Execution ...
type Execution interface {
	InsertExecution(ctx context.Context, execution model.Execution) (int64, error)
	UpdateExecution(ctx context.Context, execution model.Execution) error

	GetExecution(ctx context.Context, id int64) (model.NullExecution, error)
	LockExecution(ctx context.Context, id int64) (model.NullExecution, error)
	LockExecutionByTrackingCode(ctx context.Context, code string) (model.NullExecution, error)

	ListExecutionsByCampaign(
		ctx context.Context, campaignID int64, page model.PageRequest,
	) ([]model.Execution, int64, error)
	ListExecutionsByStatus(
		ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
	) ([]model.Execution, int64, error)
	FindExecutions(ctx context.Context, filter ExecutionFilter) ([]model.Execution, error)

	GetExecutionStats(ctx context.Context, filter StatsFilter) ([]ExecutionStats, error)
	CountExecutionsByStatus(ctx context.Context) (map[model.ExecutionStatus]int64, error)
	CountRetryableExecutions(ctx context.Context) (int64, error)
}

type executionImpl struct {
}

var _ Execution = &executionImpl{}

// NewExecution ...
func NewExecution() Execution {
	return &executionImpl{}
}

const executionColumns = `id, campaign_id, user_id, execution_type, status,
	recipient_email, recipient_phone, recipient_device_token, subject, content,
	scheduled_at, sent_at, delivered_at, opened_at, clicked_at, converted_at,
	bounced_at, unsubscribed_at, error_message, retry_count, max_retries,
	cost, revenue, conversion_value, tracking_code, external_message_id,
	created_at, updated_at`

// InsertExecution ...
func (e *executionImpl) InsertExecution(ctx context.Context, execution model.Execution) (int64, error) {
	query := `
INSERT INTO campaign_execution (
	campaign_id, user_id, execution_type, status,
	recipient_email, recipient_phone, recipient_device_token, subject, content,
	scheduled_at, sent_at, delivered_at, opened_at, clicked_at, converted_at,
	bounced_at, unsubscribed_at, error_message, retry_count, max_retries,
	cost, revenue, conversion_value, tracking_code, external_message_id,
	created_at, updated_at
) VALUES (
	:campaign_id, :user_id, :execution_type, :status,
	:recipient_email, :recipient_phone, :recipient_device_token, :subject, :content,
	:scheduled_at, :sent_at, :delivered_at, :opened_at, :clicked_at, :converted_at,
	:bounced_at, :unsubscribed_at, :error_message, :retry_count, :max_retries,
	:cost, :revenue, :conversion_value, :tracking_code, :external_message_id,
	:created_at, :updated_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, execution)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateExecution writes every mutable column
func (e *executionImpl) UpdateExecution(ctx context.Context, execution model.Execution) error {
	query := `
UPDATE campaign_execution SET
	status = :status,
	subject = :subject,
	content = :content,

	scheduled_at = :scheduled_at,
	sent_at = :sent_at,
	delivered_at = :delivered_at,
	opened_at = :opened_at,
	clicked_at = :clicked_at,
	converted_at = :converted_at,
	bounced_at = :bounced_at,
	unsubscribed_at = :unsubscribed_at,

	error_message = :error_message,
	retry_count = :retry_count,
	max_retries = :max_retries,

	cost = :cost,
	revenue = :revenue,
	conversion_value = :conversion_value,
	external_message_id = :external_message_id,
	updated_at = :updated_at
WHERE id = :id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, execution)
	return err
}

func getExecution(ctx context.Context, db Readonly, query string, arg interface{}) (model.NullExecution, error) {
	var execution model.Execution
	err := db.GetContext(ctx, &execution, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NullExecution{}, nil
	}
	if err != nil {
		return model.NullExecution{}, err
	}
	return model.NullExecution{Valid: true, Execution: execution}, nil
}

// GetExecution ...
func (e *executionImpl) GetExecution(ctx context.Context, id int64) (model.NullExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM campaign_execution WHERE id = ?`
	return getExecution(ctx, GetReadonly(ctx), query, id)
}

// LockExecution ...
func (e *executionImpl) LockExecution(ctx context.Context, id int64) (model.NullExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM campaign_execution WHERE id = ? FOR UPDATE`
	return getExecution(ctx, GetTx(ctx), query, id)
}

// LockExecutionByTrackingCode ...
func (e *executionImpl) LockExecutionByTrackingCode(ctx context.Context, code string) (model.NullExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM campaign_execution WHERE tracking_code = ? FOR UPDATE`
	return getExecution(ctx, GetTx(ctx), query, code)
}

func (e *executionImpl) listExecutions(
	ctx context.Context, where string, arg interface{}, page model.PageRequest,
) ([]model.Execution, int64, error) {
	db := GetReadonly(ctx)

	var total int64
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM campaign_execution WHERE `+where, arg); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + executionColumns + ` FROM campaign_execution WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	var result []model.Execution
	err := db.SelectContext(ctx, &result, query, arg, page.Size, page.Offset())
	return result, total, err
}

// ListExecutionsByCampaign returns the most recent executions first
func (e *executionImpl) ListExecutionsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) ([]model.Execution, int64, error) {
	return e.listExecutions(ctx, "campaign_id = ?", campaignID, page)
}

// ListExecutionsByStatus ...
func (e *executionImpl) ListExecutionsByStatus(
	ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
) ([]model.Execution, int64, error) {
	return e.listExecutions(ctx, "status = ?", status, page)
}

// FindExecutions ...
func (e *executionImpl) FindExecutions(ctx context.Context, filter ExecutionFilter) ([]model.Execution, error) {
	conds := []string{"1 = 1"}
	var args []interface{}

	if filter.CampaignID != 0 {
		conds = append(conds, "campaign_id = ?")
		args = append(args, filter.CampaignID)
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, "status IN (?)")
		args = append(args, filter.Statuses)
	}
	if filter.ScheduledBefore != nil {
		conds = append(conds, "scheduled_at <= ?")
		args = append(args, *filter.ScheduledBefore)
	}
	if filter.Retryable {
		conds = append(conds, "retry_count < max_retries")
	}

	query := `SELECT ` + executionColumns + ` FROM campaign_execution WHERE ` + strings.Join(conds, " AND ")
	if filter.Recent {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY id`
	}
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	var result []model.Execution
	err = GetReadonly(ctx).SelectContext(ctx, &result, query, args...)
	return result, err
}

const executionStatsColumns = `campaign_id,
	COUNT(*) AS total,
	COUNT(sent_at) AS sent,
	COUNT(delivered_at) AS delivered,
	COUNT(opened_at) AS opened,
	COUNT(clicked_at) AS clicked,
	COUNT(converted_at) AS converted,
	COUNT(bounced_at) AS bounced,
	COUNT(unsubscribed_at) AS unsubscribed,
	COALESCE(SUM(status = 'FAILED'), 0) AS failed,
	COALESCE(SUM(cost), 0) AS cost,
	COALESCE(SUM(revenue), 0) AS revenue,
	COALESCE(SUM(conversion_value), 0) AS conversion_value`

// GetExecutionStats returns one entry per campaign having executions, ordered by campaign id
func (e *executionImpl) GetExecutionStats(ctx context.Context, filter StatsFilter) ([]ExecutionStats, error) {
	conds := []string{"1 = 1"}
	var args []interface{}

	if len(filter.CampaignIDs) > 0 {
		conds = append(conds, "campaign_id IN (?)")
		args = append(args, filter.CampaignIDs)
	}
	if filter.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "created_at < ?")
		args = append(args, *filter.To)
	}

	query := `SELECT ` + executionStatsColumns + ` FROM campaign_execution WHERE ` +
		strings.Join(conds, " AND ") + ` GROUP BY campaign_id ORDER BY campaign_id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	var result []ExecutionStats
	err = GetReadonly(ctx).SelectContext(ctx, &result, query, args...)
	return result, err
}

// CountExecutionsByStatus ...
func (e *executionImpl) CountExecutionsByStatus(ctx context.Context) (map[model.ExecutionStatus]int64, error) {
	var counts []StatusCount
	query := `SELECT status, COUNT(*) AS count FROM campaign_execution GROUP BY status`
	if err := GetReadonly(ctx).SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}

	result := map[model.ExecutionStatus]int64{}
	for _, e := range counts {
		result[model.ExecutionStatus(e.Status)] = e.Count
	}
	return result, nil
}

// CountRetryableExecutions ...
func (e *executionImpl) CountRetryableExecutions(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM campaign_execution WHERE status = ? AND retry_count < max_retries`
	var count int64
	err := GetReadonly(ctx).GetContext(ctx, &count, query, model.ExecutionStatusFailed)
	return count, err
}
