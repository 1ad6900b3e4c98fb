package backend

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
)

// trackedStatus maps a tracking event to the pipeline status it reaches, unknown events are conversions
func trackedStatus(event string) model.ExecutionStatus {
	switch strings.ToLower(strings.TrimSpace(event)) {
	case "deliver", "delivered":
		return model.ExecutionStatusDelivered
	case "open", "opened":
		return model.ExecutionStatusOpened
	case "click", "clicked":
		return model.ExecutionStatusClicked
	case "bounce", "bounced":
		return model.ExecutionStatusBounced
	default:
		return model.ExecutionStatusConverted
	}
}

func metricTypeOf(status model.ExecutionStatus) model.MetricType {
	switch status {
	case model.ExecutionStatusDelivered, model.ExecutionStatusBounced:
		return model.MetricTypeDelivery
	case model.ExecutionStatusOpened, model.ExecutionStatusClicked:
		return model.MetricTypeEngagement
	case model.ExecutionStatusUnsubscribed:
		return model.MetricTypeAudience
	default:
		return model.MetricTypeConversion
	}
}

func (s *Service) lockByTrackingCode(ctx context.Context, code string) (model.Execution, error) {
	e, err := s.executionRepo.LockExecutionByTrackingCode(ctx, code)
	if err != nil {
		return model.Execution{}, err
	}
	if !e.Valid {
		return model.Execution{}, &NotFoundError{Resource: "tracking code", Key: code}
	}
	return e.Execution, nil
}

// track advances the execution of code to status and records a metric.
// An event that does not move the execution forward, e.g. a repeated beacon, is a no-op.
func (s *Service) track(
	ctx context.Context, code string, status model.ExecutionStatus,
	update func(e *model.Execution, m *model.Metric),
) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		e, err := s.lockByTrackingCode(ctx, code)
		if err != nil {
			return err
		}

		if e.Status == model.ExecutionStatusPending || e.Status == model.ExecutionStatusScheduled {
			return &IllegalTransitionError{Entity: "execution", Action: "track", Status: string(e.Status)}
		}

		now := s.now()
		if !e.Advance(status, now) {
			return nil
		}

		executionID := e.ID
		m := model.Metric{
			CampaignID:  e.CampaignID,
			ExecutionID: &executionID,
			MetricType:  metricTypeOf(status),
			MetricName:  strings.ToLower(string(status)),
			MetricValue: 1,
			Count:       1,
			TimePeriod:  model.TimePeriodAllTime,
			CreatedAt:   now,
		}
		if update != nil {
			update(&e, &m)
		}

		if err := s.executionRepo.UpdateExecution(ctx, e); err != nil {
			return err
		}
		_, err = s.metricRepo.InsertMetric(ctx, m)
		return err
	})
}

// TrackConversion records a tracking event of the execution with the tracking code.
// The value of a conversion is added to the revenue of the execution.
func (s *Service) TrackConversion(ctx context.Context, code string, event string, value decimal.NullDecimal) error {
	if value.Valid && value.Decimal.IsNegative() {
		return validationError("value must not be negative")
	}

	status := trackedStatus(event)
	return s.track(ctx, code, status, func(e *model.Execution, m *model.Metric) {
		if status != model.ExecutionStatusConverted || !value.Valid {
			return
		}
		e.Revenue = e.Revenue.Add(value.Decimal)
		e.ConversionValue = e.ConversionValue.Add(value.Decimal)

		m.MetricType = model.MetricTypeRevenue
		m.MetricValue, _ = value.Decimal.Float64()
	})
}

// TrackUnsubscribe ...
func (s *Service) TrackUnsubscribe(ctx context.Context, code string, reason string) error {
	return s.track(ctx, code, model.ExecutionStatusUnsubscribed, func(_ *model.Execution, m *model.Metric) {
		m.Dimension1 = reason
	})
}
