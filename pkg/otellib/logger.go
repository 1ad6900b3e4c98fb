package otellib

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxLoggerKey struct{}
type ctxLoggerValue struct {
	logger *zap.Logger
}

var loggerKey ctxLoggerKey

const (
	traceIDField    = "trace.id"
	spanIDField     = "span.id"
	traceFlagsField = "trace.flags"
)

// SetLoggerMiddleware puts logger into the context of each request,
// must be installed after the middleware that starts the server span
func SetLoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ToContext(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractOK returns the logger of ctx with the trace info of its span
func ExtractOK(ctx context.Context) (*zap.Logger, bool) {
	val, ok := ctx.Value(loggerKey).(ctxLoggerValue)
	if !ok {
		return nil, false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return val.logger, true
	}
	return val.logger.With(
		zap.String(traceIDField, sc.TraceID().String()),
		zap.String(spanIDField, sc.SpanID().String()),
		zap.String(traceFlagsField, sc.TraceFlags().String()),
	), true
}

// Extract ...
func Extract(ctx context.Context) *zap.Logger {
	logger, ok := ExtractOK(ctx)
	if !ok {
		return zap.NewNop()
	}
	return logger
}

// WrapError ...
func WrapError(ctx context.Context, err error) {
	Extract(ctx).WithOptions(zap.AddCallerSkip(2)).
		Error("WrapError", zap.Error(err))
}

// ToContext ...
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, ctxLoggerValue{logger: l})
}
