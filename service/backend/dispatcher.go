package backend

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
)

//go:generate moq -out dispatcher_mocks_test.go . Dispatcher

// Dispatcher hands an execution to the delivery channel and returns its external message id
type Dispatcher interface {
	Dispatch(ctx context.Context, execution model.Execution) (string, error)
}

// LogDispatcher only logs the executions, used when no message broker is configured
type LogDispatcher struct {
	logger *zap.Logger
}

var _ Dispatcher = &LogDispatcher{}

// NewLogDispatcher ...
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch ...
func (d *LogDispatcher) Dispatch(ctx context.Context, execution model.Execution) (string, error) {
	logger, ok := otellib.ExtractOK(ctx)
	if !ok {
		logger = d.logger
	}

	id := uuid.NewString()
	logger.Info("Dispatch execution",
		zap.Int64("execution_id", execution.ID),
		zap.Int64("campaign_id", execution.CampaignID),
		zap.String("execution_type", string(execution.ExecutionType)),
		zap.String("message_id", id),
	)
	return id, nil
}
