package backend

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
	"github.com/QuangTung97/marketing/repository"
)

// names of the system operations
const (
	OperationProcessScheduled = "process-scheduled"
	OperationRetryFailed      = "retry-failed"
	OperationOptimize         = "optimize"
)

func (s *Service) newOperationResult(name string) model.SystemOperationResult {
	return model.SystemOperationResult{
		Operation: name,
		StartedAt: s.now(),
	}
}

func countOutcome(result *model.SystemOperationResult, err error) {
	var illegal *IllegalTransitionError
	switch {
	case err == nil:
		result.Processed++
	case errors.As(err, &illegal):
		result.Skipped++
	default:
		result.Failed++
	}
}

func logOperationError(ctx context.Context, op string, err error, fields ...zap.Field) {
	var illegal *IllegalTransitionError
	if err == nil || errors.As(err, &illegal) {
		return
	}
	fields = append(fields, zap.String("operation", op), zap.Error(err))
	otellib.Extract(ctx).Warn("System operation step failed", fields...)
}

// ProcessScheduled activates due SCHEDULED campaigns, completes ACTIVE campaigns
// past their end date, then sends the due SCHEDULED executions
func (s *Service) ProcessScheduled(ctx context.Context) (model.SystemOperationResult, error) {
	result := s.newOperationResult(OperationProcessScheduled)
	now := result.StartedAt

	campaigns, err := s.campaignRepo.FindCampaignsByStatus(s.readonly(ctx),
		model.CampaignStatusScheduled, model.CampaignStatusActive)
	if err != nil {
		return model.SystemOperationResult{}, err
	}

	for _, c := range campaigns {
		var action model.CampaignAction
		switch {
		case c.Status == model.CampaignStatusScheduled && (c.StartDate == nil || !c.StartDate.After(now)):
			action = model.CampaignActionActivate
		case c.Status == model.CampaignStatusActive && c.EndDate != nil && !c.EndDate.After(now):
			action = model.CampaignActionComplete
		default:
			continue
		}

		_, err := s.TransitionCampaign(ctx, c.ID, action)
		logOperationError(ctx, OperationProcessScheduled, err, zap.Int64("campaign_id", c.ID))
		countOutcome(&result, err)
	}

	due, err := s.executionRepo.FindExecutions(s.readonly(ctx), repository.ExecutionFilter{
		Statuses:        []model.ExecutionStatus{model.ExecutionStatusScheduled},
		ScheduledBefore: &now,
	})
	if err != nil {
		return model.SystemOperationResult{}, err
	}
	for _, e := range due {
		_, err := s.SendExecution(ctx, e.ID)
		logOperationError(ctx, OperationProcessScheduled, err, zap.Int64("execution_id", e.ID))
		countOutcome(&result, err)
	}

	return result, nil
}

// retryExecution moves a FAILED execution of an ACTIVE campaign back to PENDING
func (s *Service) retryExecution(ctx context.Context, id int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		e, err := s.lockExecution(ctx, id)
		if err != nil {
			return err
		}
		c, err := s.lockCampaign(ctx, e.CampaignID)
		if err != nil {
			return err
		}
		if c.Status != model.CampaignStatusActive {
			return &IllegalTransitionError{
				Entity: "campaign",
				Action: "retry executions of",
				Status: string(c.Status),
			}
		}
		if !e.Retry(s.now()) {
			return &IllegalTransitionError{
				Entity: "execution",
				Action: "retry",
				Status: string(e.Status),
			}
		}
		return s.executionRepo.UpdateExecution(ctx, e)
	})
}

// RetryFailed sends again the FAILED executions whose retry count is below their max retries
func (s *Service) RetryFailed(ctx context.Context) (model.SystemOperationResult, error) {
	result := s.newOperationResult(OperationRetryFailed)

	failed, err := s.executionRepo.FindExecutions(s.readonly(ctx), repository.ExecutionFilter{
		Statuses:  []model.ExecutionStatus{model.ExecutionStatusFailed},
		Retryable: true,
	})
	if err != nil {
		return model.SystemOperationResult{}, err
	}

	for _, e := range failed {
		err := s.retryExecution(ctx, e.ID)
		if err == nil {
			_, err = s.SendExecution(ctx, e.ID)
		}
		logOperationError(ctx, OperationRetryFailed, err, zap.Int64("execution_id", e.ID))
		countOutcome(&result, err)
	}
	return result, nil
}

func (s *Service) listAllOverBudget(ctx context.Context) ([]model.Campaign, error) {
	var result []model.Campaign
	page := model.PageRequest{Page: 0, Size: model.MaxPageSize}
	for {
		campaigns, total, err := s.campaignRepo.ListOverBudgetCampaigns(ctx, page)
		if err != nil {
			return nil, err
		}
		result = append(result, campaigns...)
		if len(campaigns) == 0 || int64(len(result)) >= total {
			return result, nil
		}
		page.Page++
	}
}

// OptimizeCampaigns pauses the over-budget auto-optimized campaigns, then ranks
// the remaining active auto-optimized campaigns by conversion rate: the best one
// gets priority 1
func (s *Service) OptimizeCampaigns(ctx context.Context) (model.SystemOperationResult, error) {
	result := s.newOperationResult(OperationOptimize)

	overBudget, err := s.listAllOverBudget(s.readonly(ctx))
	if err != nil {
		return model.SystemOperationResult{}, err
	}
	for _, c := range overBudget {
		if !c.AutoOptimize || c.Status != model.CampaignStatusActive {
			continue
		}
		_, err := s.TransitionCampaign(ctx, c.ID, model.CampaignActionPause)
		logOperationError(ctx, OperationOptimize, err, zap.Int64("campaign_id", c.ID))
		countOutcome(&result, err)
	}

	active, err := s.campaignRepo.FindCampaignsByStatus(s.readonly(ctx), model.CampaignStatusActive)
	if err != nil {
		return model.SystemOperationResult{}, err
	}

	var ids []int64
	var candidates []model.Campaign
	for _, c := range active {
		if c.AutoOptimize {
			ids = append(ids, c.ID)
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return result, nil
	}

	rows, err := s.executionRepo.GetExecutionStats(s.readonly(ctx), repository.StatsFilter{CampaignIDs: ids})
	if err != nil {
		return model.SystemOperationResult{}, err
	}
	rates := map[int64]float64{}
	for _, r := range rows {
		rates[r.CampaignID] = model.SafeRate(r.Converted, r.Sent)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rates[candidates[i].ID] > rates[candidates[j].ID]
	})

	for i, c := range candidates {
		priority := i + 1
		if c.Priority == priority {
			result.Skipped++
			continue
		}
		err := s.setPriority(ctx, c.ID, priority)
		logOperationError(ctx, OperationOptimize, err, zap.Int64("campaign_id", c.ID))
		countOutcome(&result, err)
	}
	return result, nil
}

func (s *Service) setPriority(ctx context.Context, id int64, priority int) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		c, err := s.lockCampaign(ctx, id)
		if err != nil {
			return err
		}
		c.Priority = priority
		c.UpdatedAt = s.now()
		return s.campaignRepo.UpdateCampaign(ctx, c)
	})
}

// GetSystemHealth is DEGRADED when at least 10% of the executions failed
func (s *Service) GetSystemHealth(ctx context.Context) (model.SystemHealth, error) {
	ctx = s.readonly(ctx)

	campaignCounts, err := s.campaignRepo.CountCampaignsByStatus(ctx)
	if err != nil {
		return model.SystemHealth{}, err
	}
	executionCounts, err := s.executionRepo.CountExecutionsByStatus(ctx)
	if err != nil {
		return model.SystemHealth{}, err
	}
	retryable, err := s.executionRepo.CountRetryableExecutions(ctx)
	if err != nil {
		return model.SystemHealth{}, err
	}

	var total int64
	for _, n := range executionCounts {
		total += n
	}
	failed := executionCounts[model.ExecutionStatusFailed]

	status := model.HealthStatusUp
	if failed > 0 && model.SafeRate(failed, total) >= degradedFailureRate {
		status = model.HealthStatusDegraded
	}

	return model.SystemHealth{
		Status:              status,
		ActiveCampaigns:     campaignCounts[model.CampaignStatusActive],
		ScheduledCampaigns:  campaignCounts[model.CampaignStatusScheduled],
		PendingExecutions:   executionCounts[model.ExecutionStatusPending] + executionCounts[model.ExecutionStatusScheduled],
		FailedExecutions:    failed,
		RetryableExecutions: retryable,
		CheckedAt:           s.now(),
	}, nil
}
