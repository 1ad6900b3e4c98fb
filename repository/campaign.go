package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/QuangTung97/marketing/model"
)

// Campaign ...
type Campaign interface {
	InsertCampaign(ctx context.Context, campaign model.Campaign) (int64, error)
	UpdateCampaign(ctx context.Context, campaign model.Campaign) error
	DeleteCampaign(ctx context.Context, id int64) error

	GetCampaign(ctx context.Context, id int64) (model.NullCampaign, error)
	LockCampaign(ctx context.Context, id int64) (model.NullCampaign, error)

	ListCampaigns(
		ctx context.Context, filter CampaignFilter, order SortOrder, page model.PageRequest,
	) ([]model.Campaign, int64, error)
	ListOverBudgetCampaigns(ctx context.Context, page model.PageRequest) ([]model.Campaign, int64, error)
	FindCampaignsByStatus(ctx context.Context, statuses ...model.CampaignStatus) ([]model.Campaign, error)
	CountCampaignsByStatus(ctx context.Context) (map[model.CampaignStatus]int64, error)
}

type campaignImpl struct {
}

var _ Campaign = &campaignImpl{}

// NewCampaign ...
func NewCampaign() Campaign {
	return &campaignImpl{}
}

const campaignColumns = `id, name, description, campaign_type, status, start_date, end_date,
	targeting_rules, personalization_rules, budget_limit, cost_per_send,
	priority, auto_optimize, tracking_enabled,
	created_by, created_at, updated_at, last_executed_at`

// InsertCampaign ...
func (c *campaignImpl) InsertCampaign(ctx context.Context, campaign model.Campaign) (int64, error) {
	query := `
INSERT INTO campaign (
	name, description, campaign_type, status, start_date, end_date,
	targeting_rules, personalization_rules, budget_limit, cost_per_send,
	priority, auto_optimize, tracking_enabled,
	created_by, created_at, updated_at, last_executed_at
) VALUES (
	:name, :description, :campaign_type, :status, :start_date, :end_date,
	:targeting_rules, :personalization_rules, :budget_limit, :cost_per_send,
	:priority, :auto_optimize, :tracking_enabled,
	:created_by, :created_at, :updated_at, :last_executed_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, campaign)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateCampaign ...
func (c *campaignImpl) UpdateCampaign(ctx context.Context, campaign model.Campaign) error {
	query := `
UPDATE campaign SET
	name = :name,
	description = :description,
	campaign_type = :campaign_type,
	status = :status,
	start_date = :start_date,
	end_date = :end_date,

	targeting_rules = :targeting_rules,
	personalization_rules = :personalization_rules,
	budget_limit = :budget_limit,
	cost_per_send = :cost_per_send,

	priority = :priority,
	auto_optimize = :auto_optimize,
	tracking_enabled = :tracking_enabled,

	updated_at = :updated_at,
	last_executed_at = :last_executed_at
WHERE id = :id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, campaign)
	return err
}

// DeleteCampaign also deletes the executions and metrics of the campaign
func (c *campaignImpl) DeleteCampaign(ctx context.Context, id int64) error {
	tx := GetTx(ctx)
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_metric WHERE campaign_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_execution WHERE campaign_id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM campaign WHERE id = ?`, id)
	return err
}

func getCampaign(ctx context.Context, db Readonly, query string, id int64) (model.NullCampaign, error) {
	var campaign model.Campaign
	err := db.GetContext(ctx, &campaign, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NullCampaign{}, nil
	}
	if err != nil {
		return model.NullCampaign{}, err
	}
	return model.NullCampaign{Valid: true, Campaign: campaign}, nil
}

// GetCampaign ...
func (c *campaignImpl) GetCampaign(ctx context.Context, id int64) (model.NullCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaign WHERE id = ?`
	return getCampaign(ctx, GetReadonly(ctx), query, id)
}

// LockCampaign ...
func (c *campaignImpl) LockCampaign(ctx context.Context, id int64) (model.NullCampaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaign WHERE id = ? FOR UPDATE`
	return getCampaign(ctx, GetTx(ctx), query, id)
}

func campaignWhere(filter CampaignFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conds = append(conds, "campaign_type = ?")
		args = append(args, filter.Type)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func prefixColumns(prefix string, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// ListCampaigns returns one page and the total count
func (c *campaignImpl) ListCampaigns(
	ctx context.Context, filter CampaignFilter, order SortOrder, page model.PageRequest,
) ([]model.Campaign, int64, error) {
	db := GetReadonly(ctx)
	where, args := campaignWhere(filter)

	var total int64
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM campaign`+where, args...); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	query := `SELECT ` + campaignColumns + ` FROM campaign` + where +
		` ORDER BY ` + order.Column() + ` ` + dir + `, id ` + dir + ` LIMIT ? OFFSET ?`

	var result []model.Campaign
	err := db.SelectContext(ctx, &result, query, append(args, page.Size, page.Offset())...)
	return result, total, err
}

const overBudgetFrom = `
FROM campaign c
INNER JOIN (
	SELECT campaign_id, SUM(cost) AS spent FROM campaign_execution GROUP BY campaign_id
) s ON s.campaign_id = c.id
WHERE c.budget_limit IS NOT NULL AND s.spent > c.budget_limit`

// ListOverBudgetCampaigns returns campaigns whose total execution cost exceeds the budget limit
func (c *campaignImpl) ListOverBudgetCampaigns(
	ctx context.Context, page model.PageRequest,
) ([]model.Campaign, int64, error) {
	db := GetReadonly(ctx)

	var total int64
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*)`+overBudgetFrom); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + prefixColumns("c.", campaignColumns) + overBudgetFrom + ` ORDER BY c.id LIMIT ? OFFSET ?`

	var result []model.Campaign
	err := db.SelectContext(ctx, &result, query, page.Size, page.Offset())
	return result, total, err
}

// FindCampaignsByStatus ...
func (c *campaignImpl) FindCampaignsByStatus(
	ctx context.Context, statuses ...model.CampaignStatus,
) ([]model.Campaign, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT `+campaignColumns+` FROM campaign WHERE status IN (?) ORDER BY id`, statuses)
	if err != nil {
		return nil, err
	}

	var result []model.Campaign
	err = GetReadonly(ctx).SelectContext(ctx, &result, query, args...)
	return result, err
}

// CountCampaignsByStatus ...
func (c *campaignImpl) CountCampaignsByStatus(ctx context.Context) (map[model.CampaignStatus]int64, error) {
	var counts []StatusCount
	query := `SELECT status, COUNT(*) AS count FROM campaign GROUP BY status`
	if err := GetReadonly(ctx).SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}

	result := map[model.CampaignStatus]int64{}
	for _, e := range counts {
		result[model.CampaignStatus(e.Status)] = e.Count
	}
	return result, nil
}
