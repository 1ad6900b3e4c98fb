package backend

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

func validateMoney(field string, v decimal.NullDecimal) error {
	if v.Valid && v.Decimal.IsNegative() {
		return validationError("%s must not be negative", field)
	}
	return nil
}

func validateCampaign(c model.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return validationError("name is required")
	}
	if _, err := model.ParseCampaignType(string(c.CampaignType)); err != nil {
		return validationError("invalid campaignType %q", c.CampaignType)
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return validationError("endDate must not be before startDate")
	}
	if err := validateMoney("budgetLimit", c.BudgetLimit); err != nil {
		return err
	}
	return validateMoney("costPerSend", c.CostPerSend)
}

// CreateCampaign creates c in status DRAFT
func (s *Service) CreateCampaign(ctx context.Context, c model.Campaign) (model.Campaign, error) {
	if err := validateCampaign(c); err != nil {
		return model.Campaign{}, err
	}

	now := s.now()
	c.ID = 0
	c.Status = model.CampaignStatusDraft
	c.CreatedAt = now
	c.UpdatedAt = now
	c.LastExecutedAt = nil

	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		id, err := s.campaignRepo.InsertCampaign(ctx, c)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return model.Campaign{}, err
	}
	return c, nil
}

// UpdateCampaign replaces the editable fields, status and bookkeeping fields are kept
func (s *Service) UpdateCampaign(ctx context.Context, id int64, c model.Campaign) (model.Campaign, error) {
	if err := validateCampaign(c); err != nil {
		return model.Campaign{}, err
	}

	var result model.Campaign
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		old, err := s.lockCampaign(ctx, id)
		if err != nil {
			return err
		}

		c.ID = id
		c.Status = old.Status
		c.CreatedBy = old.CreatedBy
		c.CreatedAt = old.CreatedAt
		c.LastExecutedAt = old.LastExecutedAt
		c.UpdatedAt = s.now()

		if err := s.campaignRepo.UpdateCampaign(ctx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}

// DeleteCampaign deletes the campaign with its executions and metrics
func (s *Service) DeleteCampaign(ctx context.Context, id int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.lockCampaign(ctx, id); err != nil {
			return err
		}
		return s.campaignRepo.DeleteCampaign(ctx, id)
	})
}

// GetCampaign ...
func (s *Service) GetCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	return s.getCampaign(s.readonly(ctx), id)
}

// ListCampaigns ...
func (s *Service) ListCampaigns(
	ctx context.Context, filter repository.CampaignFilter, order repository.SortOrder, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	page = page.Normalize()
	campaigns, total, err := s.campaignRepo.ListCampaigns(s.readonly(ctx), filter, order, page)
	if err != nil {
		return model.Page[model.Campaign]{}, err
	}
	return model.NewPage(campaigns, page, total), nil
}

// ListOverBudgetCampaigns lists campaigns whose execution cost exceeds the budget limit
func (s *Service) ListOverBudgetCampaigns(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Campaign], error) {
	page = page.Normalize()
	campaigns, total, err := s.campaignRepo.ListOverBudgetCampaigns(s.readonly(ctx), page)
	if err != nil {
		return model.Page[model.Campaign]{}, err
	}
	return model.NewPage(campaigns, page, total), nil
}

// TransitionCampaign applies action to the campaign
func (s *Service) TransitionCampaign(
	ctx context.Context, id int64, action model.CampaignAction,
) (model.Campaign, error) {
	return s.transition(ctx, id, action, nil)
}

// ScheduleCampaign moves the campaign to SCHEDULED, starting at scheduledTime
func (s *Service) ScheduleCampaign(ctx context.Context, id int64, scheduledTime time.Time) (model.Campaign, error) {
	if scheduledTime.IsZero() {
		return model.Campaign{}, validationError("scheduledTime is required")
	}
	scheduledTime = scheduledTime.UTC()
	return s.transition(ctx, id, model.CampaignActionSchedule, func(c *model.Campaign) {
		c.StartDate = &scheduledTime
	})
}

func (s *Service) transition(
	ctx context.Context, id int64, action model.CampaignAction, update func(c *model.Campaign),
) (model.Campaign, error) {
	var result model.Campaign
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		c, err := s.lockCampaign(ctx, id)
		if err != nil {
			return err
		}

		next, ok := model.NextCampaignStatus(c.Status, action)
		if !ok {
			return &IllegalTransitionError{
				Entity: "campaign",
				Action: string(action),
				Status: string(c.Status),
			}
		}

		now := s.now()
		c.Status = next
		c.UpdatedAt = now
		if action == model.CampaignActionActivate && c.StartDate == nil {
			c.StartDate = &now
		}
		if update != nil {
			update(&c)
		}

		if err := s.campaignRepo.UpdateCampaign(ctx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}
