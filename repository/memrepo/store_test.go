package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func insertCampaigns(t *testing.T, s *Store, campaigns ...model.Campaign) []int64 {
	var ids []int64
	err := s.Provider().Transact(newContext(), func(ctx context.Context) error {
		for _, c := range campaigns {
			id, err := s.Campaign().InsertCampaign(ctx, c)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.Equal(t, nil, err)
	return ids
}

func TestStore_Transact__Rollback_On_Error(t *testing.T) {
	s := New()
	ids := insertCampaigns(t, s, model.Campaign{Name: "first"})

	err := s.Provider().Transact(newContext(), func(ctx context.Context) error {
		_, err := s.Campaign().InsertCampaign(ctx, model.Campaign{Name: "second"})
		require.Equal(t, nil, err)

		err = s.Campaign().UpdateCampaign(ctx, model.Campaign{ID: ids[0], Name: "renamed"})
		require.Equal(t, nil, err)

		return errors.New("abort")
	})
	assert.Equal(t, errors.New("abort"), err)

	c, err := s.Campaign().GetCampaign(newContext(), ids[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, "first", c.Campaign.Name)

	counts, err := s.Campaign().CountCampaignsByStatus(newContext())
	assert.Equal(t, nil, err)
	assert.Equal(t, map[model.CampaignStatus]int64{"": 1}, counts)
}

func TestStore_Transact__Nested_Joins_Outer(t *testing.T) {
	s := New()
	p := s.Provider()

	err := p.Transact(newContext(), func(ctx context.Context) error {
		return p.Transact(ctx, func(ctx context.Context) error {
			_, err := s.Campaign().InsertCampaign(ctx, model.Campaign{Name: "nested"})
			return err
		})
	})
	assert.Equal(t, nil, err)

	c, err := s.Campaign().GetCampaign(p.Readonly(newContext()), 1)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, c.Valid)
}

func TestStore_Write_Outside_Transaction_Panics(t *testing.T) {
	s := New()
	assert.PanicsWithValue(t, "Not found transaction", func() {
		_, _ = s.Campaign().InsertCampaign(newContext(), model.Campaign{})
	})
}

func TestCampaignRepo_ListCampaigns(t *testing.T) {
	s := New()
	insertCampaigns(t, s,
		model.Campaign{Name: "Spring Sale", Priority: 3, Status: model.CampaignStatusActive},
		model.Campaign{Name: "Welcome", Description: "new users", Priority: 1, Status: model.CampaignStatusDraft},
		model.Campaign{Name: "Summer sale", Priority: 2, Status: model.CampaignStatusActive},
	)

	result, total, err := s.Campaign().ListCampaigns(newContext(),
		repository.CampaignFilter{Query: "SALE"},
		repository.SortOrder{Field: "priority"},
		model.PageRequest{Page: 0, Size: 10},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Summer sale", result[0].Name)
	assert.Equal(t, "Spring Sale", result[1].Name)

	result, total, err = s.Campaign().ListCampaigns(newContext(),
		repository.CampaignFilter{},
		repository.SortOrder{Field: "name", Desc: true},
		model.PageRequest{Page: 1, Size: 2},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 1, len(result))
	assert.Equal(t, "Spring Sale", result[0].Name)

	result, _, err = s.Campaign().ListCampaigns(newContext(),
		repository.CampaignFilter{Query: "new users", Status: model.CampaignStatusDraft},
		repository.SortOrder{},
		model.PageRequest{Size: 10},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(result))
	assert.Equal(t, "Welcome", result[0].Name)

	result, total, err = s.Campaign().ListCampaigns(newContext(),
		repository.CampaignFilter{}, repository.SortOrder{}, model.PageRequest{Page: 5, Size: 10},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), total)
	assert.Nil(t, result)
}

func TestCampaignRepo_ListOverBudgetCampaigns(t *testing.T) {
	s := New()
	ids := insertCampaigns(t, s,
		model.Campaign{Name: "over", BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		model.Campaign{Name: "within", BudgetLimit: decimal.NewNullDecimal(decimal.NewFromInt(100))},
		model.Campaign{Name: "unlimited"},
	)

	err := s.Provider().Transact(newContext(), func(ctx context.Context) error {
		for _, id := range ids {
			for i := 0; i < 3; i++ {
				_, err := s.Execution().InsertExecution(ctx, model.Execution{
					CampaignID: id,
					Cost:       decimal.NewFromInt(4),
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	require.Equal(t, nil, err)

	result, total, err := s.Campaign().ListOverBudgetCampaigns(newContext(), model.PageRequest{Size: 10})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "over", result[0].Name)
}

func TestCampaignRepo_DeleteCampaign__Removes_Executions_And_Metrics(t *testing.T) {
	s := New()
	ids := insertCampaigns(t, s, model.Campaign{Name: "a"}, model.Campaign{Name: "b"})

	err := s.Provider().Transact(newContext(), func(ctx context.Context) error {
		for _, id := range ids {
			if _, err := s.Execution().InsertExecution(ctx, model.Execution{CampaignID: id}); err != nil {
				return err
			}
			if _, err := s.Metric().InsertMetric(ctx, model.Metric{CampaignID: id}); err != nil {
				return err
			}
		}
		return s.Campaign().DeleteCampaign(ctx, ids[0])
	})
	require.Equal(t, nil, err)

	_, total, err := s.Execution().ListExecutionsByCampaign(newContext(), ids[0], model.PageRequest{Size: 10})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), total)

	_, total, err = s.Metric().ListMetricsByCampaign(newContext(), ids[1], model.PageRequest{Size: 10})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), total)
}

func TestExecutionRepo_Stats_And_Filters(t *testing.T) {
	s := New()
	ids := insertCampaigns(t, s, model.Campaign{Name: "a"}, model.Campaign{Name: "b"})

	now := newTime("2025-01-01T10:00:00Z")
	clicked := model.Execution{CampaignID: ids[0], Status: model.ExecutionStatusPending, MaxRetries: 3}
	clicked.Advance(model.ExecutionStatusClicked, now)
	clicked.Cost = decimal.RequireFromString("0.5")
	clicked.CreatedAt = now

	failed := model.Execution{CampaignID: ids[0], Status: model.ExecutionStatusPending, MaxRetries: 1}
	failed.Fail("timeout", now)
	failed.CreatedAt = now.Add(time.Minute)

	exhausted := model.Execution{CampaignID: ids[1], Status: model.ExecutionStatusFailed, RetryCount: 1, MaxRetries: 1}

	scheduledAt := now.Add(time.Hour)
	scheduled := model.Execution{CampaignID: ids[1], Status: model.ExecutionStatusScheduled, ScheduledAt: &scheduledAt}

	err := s.Provider().Transact(newContext(), func(ctx context.Context) error {
		for _, e := range []model.Execution{clicked, failed, exhausted, scheduled} {
			if _, err := s.Execution().InsertExecution(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	require.Equal(t, nil, err)

	stats, err := s.Execution().GetExecutionStats(newContext(), repository.StatsFilter{CampaignIDs: []int64{ids[0]}})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(stats))
	assert.Equal(t, int64(2), stats[0].Total)
	assert.Equal(t, int64(1), stats[0].Sent)
	assert.Equal(t, int64(1), stats[0].Delivered)
	assert.Equal(t, int64(1), stats[0].Opened)
	assert.Equal(t, int64(1), stats[0].Clicked)
	assert.Equal(t, int64(0), stats[0].Converted)
	assert.Equal(t, int64(1), stats[0].Failed)
	assert.Equal(t, "0.5", stats[0].Cost.String())

	retryable, err := s.Execution().FindExecutions(newContext(), repository.ExecutionFilter{
		Statuses:  []model.ExecutionStatus{model.ExecutionStatusFailed},
		Retryable: true,
	})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(retryable))
	assert.Equal(t, "timeout", retryable[0].ErrorMessage)

	count, err := s.Execution().CountRetryableExecutions(newContext())
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), count)

	before := now.Add(30 * time.Minute)
	due, err := s.Execution().FindExecutions(newContext(), repository.ExecutionFilter{
		Statuses:        []model.ExecutionStatus{model.ExecutionStatusScheduled},
		ScheduledBefore: &before,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(due))

	before = now.Add(time.Hour)
	due, err = s.Execution().FindExecutions(newContext(), repository.ExecutionFilter{
		Statuses:        []model.ExecutionStatus{model.ExecutionStatusScheduled},
		ScheduledBefore: &before,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(due))

	recent, err := s.Execution().FindExecutions(newContext(), repository.ExecutionFilter{
		CampaignID: ids[0], Recent: true, Limit: 1,
	})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(recent))
	assert.Equal(t, model.ExecutionStatusFailed, recent[0].Status)
}
