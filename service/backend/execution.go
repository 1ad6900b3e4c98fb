package backend

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
)

func validateExecution(e model.Execution) error {
	if e.CampaignID <= 0 {
		return validationError("campaignId is required")
	}
	if _, err := model.ParseExecutionType(string(e.ExecutionType)); err != nil {
		return validationError("invalid executionType %q", e.ExecutionType)
	}
	if e.MaxRetries < 0 {
		return validationError("maxRetries must not be negative")
	}
	return nil
}

// CreateExecution creates e for an existing campaign. The execution is SCHEDULED
// when scheduledAt is in the future, PENDING otherwise.
func (s *Service) CreateExecution(ctx context.Context, e model.Execution) (model.Execution, error) {
	if err := validateExecution(e); err != nil {
		return model.Execution{}, err
	}

	now := s.now()
	result := model.Execution{
		CampaignID:    e.CampaignID,
		UserID:        e.UserID,
		ExecutionType: e.ExecutionType,
		Status:        model.ExecutionStatusPending,

		RecipientEmail:       e.RecipientEmail,
		RecipientPhone:       e.RecipientPhone,
		RecipientDeviceToken: e.RecipientDeviceToken,

		Subject: e.Subject,
		Content: e.Content,

		ScheduledAt: e.ScheduledAt,
		MaxRetries:  e.MaxRetries,

		Cost:            decimal.Zero,
		Revenue:         decimal.Zero,
		ConversionValue: decimal.Zero,

		TrackingCode: s.opts.newTrackingCode(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = s.opts.defaultMaxRetries
	}
	if result.ScheduledAt != nil && result.ScheduledAt.After(now) {
		result.Status = model.ExecutionStatusScheduled
	}

	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		c, err := s.getCampaign(ctx, e.CampaignID)
		if err != nil {
			return err
		}
		if c.Status.IsTerminal() {
			return &IllegalTransitionError{
				Entity: "campaign",
				Action: "create executions of",
				Status: string(c.Status),
			}
		}

		id, err := s.executionRepo.InsertExecution(ctx, result)
		if err != nil {
			return err
		}
		result.ID = id
		return nil
	})
	if err != nil {
		return model.Execution{}, err
	}
	return result, nil
}

// GetExecution ...
func (s *Service) GetExecution(ctx context.Context, id int64) (model.Execution, error) {
	e, err := s.executionRepo.GetExecution(s.readonly(ctx), id)
	if err != nil {
		return model.Execution{}, err
	}
	if !e.Valid {
		return model.Execution{}, executionNotFound(id)
	}
	return e.Execution, nil
}

// ListExecutionsByCampaign ...
func (s *Service) ListExecutionsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) (model.Page[model.Execution], error) {
	page = page.Normalize()
	executions, total, err := s.executionRepo.ListExecutionsByCampaign(s.readonly(ctx), campaignID, page)
	if err != nil {
		return model.Page[model.Execution]{}, err
	}
	return model.NewPage(executions, page, total), nil
}

// ListExecutionsByStatus ...
func (s *Service) ListExecutionsByStatus(
	ctx context.Context, status model.ExecutionStatus, page model.PageRequest,
) (model.Page[model.Execution], error) {
	page = page.Normalize()
	executions, total, err := s.executionRepo.ListExecutionsByStatus(s.readonly(ctx), status, page)
	if err != nil {
		return model.Page[model.Execution]{}, err
	}
	return model.NewPage(executions, page, total), nil
}

// SendExecution dispatches a PENDING or SCHEDULED execution of an ACTIVE campaign.
// The dispatcher is called outside of any transaction, between marking the
// execution SENDING and recording the outcome.
func (s *Service) SendExecution(ctx context.Context, id int64) (model.Execution, error) {
	var sending model.Execution
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
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
				Action: "send executions of",
				Status: string(c.Status),
			}
		}
		if e.Status != model.ExecutionStatusPending && e.Status != model.ExecutionStatusScheduled {
			return &IllegalTransitionError{
				Entity: "execution",
				Action: "send",
				Status: string(e.Status),
			}
		}

		e.Advance(model.ExecutionStatusSending, s.now())
		if err := s.executionRepo.UpdateExecution(ctx, e); err != nil {
			return err
		}
		sending = e
		return nil
	})
	if err != nil {
		return model.Execution{}, err
	}

	externalID, dispatchErr := s.dispatcher.Dispatch(ctx, sending)
	if dispatchErr != nil {
		otellib.Extract(ctx).Warn("Dispatch failed",
			zap.Int64("execution_id", id), zap.Error(dispatchErr))
	}

	var result model.Execution
	err = s.provider.Transact(ctx, func(ctx context.Context) error {
		e, err := s.lockExecution(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if dispatchErr != nil {
			e.Fail(dispatchErr.Error(), now)
		} else {
			c, err := s.lockCampaign(ctx, e.CampaignID)
			if err != nil {
				return err
			}

			e.Advance(model.ExecutionStatusSent, now)
			e.ExternalMessageID = externalID
			if c.CostPerSend.Valid {
				e.Cost = c.CostPerSend.Decimal
			}

			c.LastExecutedAt = &now
			if err := s.campaignRepo.UpdateCampaign(ctx, c); err != nil {
				return err
			}
		}

		if err := s.executionRepo.UpdateExecution(ctx, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return model.Execution{}, err
	}
	if dispatchErr != nil {
		return result, &DispatchError{ExecutionID: id, Err: dispatchErr}
	}
	return result, nil
}
