package memrepo

import (
	"context"
	"sort"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

type executionRepo struct {
	store *Store
}

var _ repository.Execution = executionRepo{}

// Execution ...
func (s *Store) Execution() repository.Execution {
	return executionRepo{store: s}
}

func (r executionRepo) InsertExecution(ctx context.Context, execution model.Execution) (int64, error) {
	var id int64
	r.store.write(ctx, func(t *tables) {
		t.lastExecutionID++
		id = t.lastExecutionID
		execution.ID = id
		t.executions[id] = execution
	})
	return id, nil
}

func (r executionRepo) UpdateExecution(ctx context.Context, execution model.Execution) error {
	r.store.write(ctx, func(t *tables) {
		old, ok := t.executions[execution.ID]
		if !ok {
			return
		}
		execution.CampaignID = old.CampaignID
		execution.TrackingCode = old.TrackingCode
		execution.CreatedAt = old.CreatedAt
		t.executions[execution.ID] = execution
	})
	return nil
}

func (r executionRepo) GetExecution(ctx context.Context, id int64) (model.NullExecution, error) {
	var result model.NullExecution
	r.store.read(ctx, func(t *tables) {
		e, ok := t.executions[id]
		result = model.NullExecution{Valid: ok, Execution: e}
	})
	return result, nil
}

func (r executionRepo) LockExecution(ctx context.Context, id int64) (model.NullExecution, error) {
	var result model.NullExecution
	r.store.write(ctx, func(t *tables) {
		e, ok := t.executions[id]
		result = model.NullExecution{Valid: ok, Execution: e}
	})
	return result, nil
}

func (r executionRepo) LockExecutionByTrackingCode(ctx context.Context, code string) (model.NullExecution, error) {
	var result model.NullExecution
	r.store.write(ctx, func(t *tables) {
		for _, e := range t.executions {
			if e.TrackingCode == code {
				result = model.NullExecution{Valid: true, Execution: e}
				return
			}
		}
	})
	return result, nil
}

func sortRecentFirst(executions []model.Execution) {
	sort.Slice(executions, func(i, j int) bool {
		a, b := executions[i], executions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func (r executionRepo) listExecutions(
	ctx context.Context, match func(e model.Execution) bool, page model.PageRequest,
) ([]model.Execution, int64, error) {
	var matched []model.Execution
	r.store.read(ctx, func(t *tables) {
		for _, e := range t.executions {
			if match(e) {
				matched = append(matched, e)
			}
		}
	})
	sortRecentFirst(matched)
	return pageOf(matched, page), int64(len(matched)), nil
}

func (r executionRepo) ListExecutionsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) ([]model.Execution, int64, error) {
	return r.listExecutions(ctx, func(e model.Execution) bool {
		return e.CampaignID == campaignID
	}, page)
}

func (r executionRepo) ListExecutionsByStatus(
	ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
) ([]model.Execution, int64, error) {
	return r.listExecutions(ctx, func(e model.Execution) bool {
		return e.Status == status
	}, page)
}

func matchExecution(e model.Execution, filter repository.ExecutionFilter) bool {
	if filter.CampaignID != 0 && e.CampaignID != filter.CampaignID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if e.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ScheduledBefore != nil {
		if e.ScheduledAt == nil || e.ScheduledAt.After(*filter.ScheduledBefore) {
			return false
		}
	}
	if filter.Retryable && e.RetryCount >= e.MaxRetries {
		return false
	}
	return true
}

func (r executionRepo) FindExecutions(
	ctx context.Context, filter repository.ExecutionFilter,
) ([]model.Execution, error) {
	var result []model.Execution
	r.store.read(ctx, func(t *tables) {
		for _, e := range t.executions {
			if matchExecution(e, filter) {
				result = append(result, e)
			}
		}
	})

	if filter.Recent {
		sortRecentFirst(result)
	} else {
		sort.Slice(result, func(i, j int) bool {
			return result[i].ID < result[j].ID
		})
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func statsOf(e model.Execution) repository.ExecutionStats {
	stats := repository.ExecutionStats{
		CampaignID:      e.CampaignID,
		Total:           1,
		Cost:            e.Cost,
		Revenue:         e.Revenue,
		ConversionValue: e.ConversionValue,
	}
	if e.SentAt != nil {
		stats.Sent = 1
	}
	if e.DeliveredAt != nil {
		stats.Delivered = 1
	}
	if e.OpenedAt != nil {
		stats.Opened = 1
	}
	if e.ClickedAt != nil {
		stats.Clicked = 1
	}
	if e.ConvertedAt != nil {
		stats.Converted = 1
	}
	if e.BouncedAt != nil {
		stats.Bounced = 1
	}
	if e.UnsubscribedAt != nil {
		stats.Unsubscribed = 1
	}
	if e.Status == model.ExecutionStatusFailed {
		stats.Failed = 1
	}
	return stats
}

func (r executionRepo) GetExecutionStats(
	ctx context.Context, filter repository.StatsFilter,
) ([]repository.ExecutionStats, error) {
	campaigns := map[int64]bool{}
	for _, id := range filter.CampaignIDs {
		campaigns[id] = true
	}

	byCampaign := map[int64]*repository.ExecutionStats{}
	r.store.read(ctx, func(t *tables) {
		for _, e := range t.executions {
			if len(campaigns) > 0 && !campaigns[e.CampaignID] {
				continue
			}
			if filter.From != nil && e.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !e.CreatedAt.Before(*filter.To) {
				continue
			}

			stats, ok := byCampaign[e.CampaignID]
			if !ok {
				stats = &repository.ExecutionStats{CampaignID: e.CampaignID}
				byCampaign[e.CampaignID] = stats
			}
			stats.Add(statsOf(e))
		}
	})

	result := make([]repository.ExecutionStats, 0, len(byCampaign))
	for _, stats := range byCampaign {
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CampaignID < result[j].CampaignID
	})
	return result, nil
}

func (r executionRepo) CountExecutionsByStatus(ctx context.Context) (map[model.ExecutionStatus]int64, error) {
	result := map[model.ExecutionStatus]int64{}
	r.store.read(ctx, func(t *tables) {
		for _, e := range t.executions {
			result[e.Status]++
		}
	})
	return result, nil
}

func (r executionRepo) CountRetryableExecutions(ctx context.Context) (int64, error) {
	var count int64
	r.store.read(ctx, func(t *tables) {
		for _, e := range t.executions {
			if e.CanRetry() {
				count++
			}
		}
	})
	return count, nil
}
