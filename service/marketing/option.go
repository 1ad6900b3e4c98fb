package marketing

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TokenSource returns the bearer token attached to each request, an empty token sends no header
type TokenSource func(ctx context.Context) (string, error)

// StaticToken ...
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

type clientOptions struct {
	httpClient *http.Client
	token      TokenSource
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *Metrics
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
		tracer:     otel.Tracer("marketing/client"),
	}
}

// Option ...
type Option func(opts *clientOptions)

// WithHTTPClient ...
func WithHTTPClient(c *http.Client) Option {
	return func(opts *clientOptions) {
		opts.httpClient = c
	}
}

// WithTokenSource ...
func WithTokenSource(src TokenSource) Option {
	return func(opts *clientOptions) {
		opts.token = src
	}
}

// WithLogger ...
func WithLogger(logger *zap.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithTracer ...
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *clientOptions) {
		opts.tracer = tracer
	}
}

// WithMetrics ...
func WithMetrics(m *Metrics) Option {
	return func(opts *clientOptions) {
		opts.metrics = m
	}
}
