package marketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
)

// Client talks to the marketing backend over HTTP/JSON
type Client struct {
	baseURL string
	opts    clientOptions
}

var _ IService = &Client{}

// New creates a client for the backend at baseURL, e.g. http://localhost:8080
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	opts := defaultClientOptions()
	for _, fn := range options {
		fn(&opts)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + BasePath,
		opts:    opts,
	}, nil
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	ctx, span := c.opts.tracer.Start(ctx, "marketing."+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("http.target", BasePath+req.path),
		),
	)
	defer span.End()

	start := time.Now()
	statusCode, err := c.roundTrip(ctx, req, out)
	c.opts.metrics.observe(req.op, statusCode, time.Since(start))

	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.opts.logger.Debug("Marketing request failed",
			zap.String("operation", req.op), zap.Int("status", statusCode), zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, out interface{}) (int, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.opts.token != nil {
		token, err := c.opts.token(ctx)
		if err != nil {
			return 0, fmt.Errorf("token source: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otellib.Propagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.opts.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, newHTTPError(req, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", req.op, err)
	}
	return resp.StatusCode, nil
}

func newHTTPError(req request, resp *http.Response) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Method:     req.method,
		Path:       BasePath + req.path,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return httpErr
	}

	var envelope ErrorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		httpErr.Code = envelope.Error.Code
		httpErr.Message = envelope.Error.Message
		return httpErr
	}
	httpErr.Message = strings.TrimSpace(string(data))
	return httpErr
}

func pageQuery(page model.PageRequest) url.Values {
	p := page.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))
	return q
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
