package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/pkg/otellib"
)

// ToastKind ...
type ToastKind string

const (
	// ToastSuccess ...
	ToastSuccess ToastKind = "success"

	// ToastError ...
	ToastError ToastKind = "error"
)

// Toast is the user-visible outcome of a mutation
type Toast struct {
	Kind    ToastKind
	Message string
}

// Notifier receives exactly one toast per mutation
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// LogNotifier writes toasts to the logger of ctx, or to its own logger if ctx has none
type LogNotifier struct {
	logger *zap.Logger
}

var _ Notifier = &LogNotifier{}

// NewLogNotifier ...
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify ...
func (n *LogNotifier) Notify(ctx context.Context, toast Toast) {
	logger := n.logger
	if l, ok := otellib.ExtractOK(ctx); ok {
		logger = l
	}

	if toast.Kind == ToastError {
		logger.Error(toast.Message, zap.String("toast", string(toast.Kind)))
		return
	}
	logger.Info(toast.Message, zap.String("toast", string(toast.Kind)))
}
