package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

// DefaultMaxRetries of an execution created without max retries
const DefaultMaxRetries = 3

const (
	dashboardTopCampaigns     = 5
	dashboardRecentExecutions = 10
	dashboardRecentMetrics    = 10

	// degradedFailureRate is the share of failed executions from which the system is DEGRADED
	degradedFailureRate = 0.1
)

// Timer ...
type Timer interface {
	Now() time.Time
}

type realTimer struct{}

func (realTimer) Now() time.Time {
	return time.Now()
}

type serviceOptions struct {
	timer             Timer
	defaultMaxRetries int
	newTrackingCode   func() string
}

// Option ...
type Option func(opts *serviceOptions)

// WithTimer ...
func WithTimer(timer Timer) Option {
	return func(opts *serviceOptions) {
		opts.timer = timer
	}
}

// WithDefaultMaxRetries ...
func WithDefaultMaxRetries(n int) Option {
	return func(opts *serviceOptions) {
		opts.defaultMaxRetries = n
	}
}

// WithTrackingCodeGenerator ...
func WithTrackingCodeGenerator(fn func() string) Option {
	return func(opts *serviceOptions) {
		opts.newTrackingCode = fn
	}
}

// Repos groups the repositories of the service
type Repos struct {
	Provider  repository.Provider
	Campaign  repository.Campaign
	Execution repository.Execution
	Metric    repository.Metric
}

// NewMySQLRepos ...
func NewMySQLRepos(provider repository.Provider) Repos {
	return Repos{
		Provider:  provider,
		Campaign:  repository.NewCampaign(),
		Execution: repository.NewExecution(),
		Metric:    repository.NewMetric(),
	}
}

// Service owns the campaign state machine and the delivery pipeline
type Service struct {
	provider      repository.Provider
	campaignRepo  repository.Campaign
	executionRepo repository.Execution
	metricRepo    repository.Metric
	dispatcher    Dispatcher

	opts serviceOptions
}

// NewService ...
func NewService(repos Repos, dispatcher Dispatcher, options ...Option) *Service {
	opts := serviceOptions{
		timer:             realTimer{},
		defaultMaxRetries: DefaultMaxRetries,
		newTrackingCode:   uuid.NewString,
	}
	for _, fn := range options {
		fn(&opts)
	}

	return &Service{
		provider:      repos.Provider,
		campaignRepo:  repos.Campaign,
		executionRepo: repos.Execution,
		metricRepo:    repos.Metric,
		dispatcher:    dispatcher,
		opts:          opts,
	}
}

func (s *Service) now() time.Time {
	return s.opts.timer.Now().UTC()
}

func (s *Service) readonly(ctx context.Context) context.Context {
	return s.provider.Readonly(ctx)
}

func (s *Service) getCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	c, err := s.campaignRepo.GetCampaign(ctx, id)
	if err != nil {
		return model.Campaign{}, err
	}
	if !c.Valid {
		return model.Campaign{}, campaignNotFound(id)
	}
	return c.Campaign, nil
}

func (s *Service) lockCampaign(ctx context.Context, id int64) (model.Campaign, error) {
	c, err := s.campaignRepo.LockCampaign(ctx, id)
	if err != nil {
		return model.Campaign{}, err
	}
	if !c.Valid {
		return model.Campaign{}, campaignNotFound(id)
	}
	return c.Campaign, nil
}

func (s *Service) lockExecution(ctx context.Context, id int64) (model.Execution, error) {
	e, err := s.executionRepo.LockExecution(ctx, id)
	if err != nil {
		return model.Execution{}, err
	}
	if !e.Valid {
		return model.Execution{}, executionNotFound(id)
	}
	return e.Execution, nil
}
