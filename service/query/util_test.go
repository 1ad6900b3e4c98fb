package query

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/memtable"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
)

func newContext() context.Context {
	return context.Background()
}

type timerMock struct {
	mut     sync.Mutex
	current time.Time
}

func (t *timerMock) Now() time.Time {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.current
}

func (t *timerMock) advance(d time.Duration) {
	t.mut.Lock()
	defer t.mut.Unlock()
	t.current = t.current.Add(d)
}

// backendFake keeps campaigns in memory and enforces the campaign state machine
type backendFake struct {
	marketing.IService

	mut       sync.Mutex
	nextID    int64
	campaigns map[int64]model.Campaign
	calls     map[string]int

	dashboardErr error
}

func newBackendFake() *backendFake {
	return &backendFake{
		campaigns: map[int64]model.Campaign{},
		calls:     map[string]int{},
	}
}

func (f *backendFake) called(op string) {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.calls[op]++
}

func (f *backendFake) callCount(op string) int {
	f.mut.Lock()
	defer f.mut.Unlock()
	return f.calls[op]
}

func notFound(id int64) error {
	return &marketing.HTTPError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("campaign %d not found", id),
	}
}

func (f *backendFake) CreateCampaign(_ context.Context, c model.Campaign) (model.Campaign, error) {
	f.called("CreateCampaign")
	f.mut.Lock()
	defer f.mut.Unlock()

	f.nextID++
	c.ID = f.nextID
	c.Status = model.CampaignStatusDraft
	f.campaigns[c.ID] = c
	return c, nil
}

func (f *backendFake) GetCampaignByID(_ context.Context, id int64) (model.Campaign, error) {
	f.called("GetCampaignByID")
	f.mut.Lock()
	defer f.mut.Unlock()

	c, ok := f.campaigns[id]
	if !ok {
		return model.Campaign{}, notFound(id)
	}
	return c, nil
}

func (f *backendFake) GetAllCampaigns(
	_ context.Context, params marketing.ListParams,
) (model.Page[model.Campaign], error) {
	f.called("GetAllCampaigns")
	f.mut.Lock()
	defer f.mut.Unlock()

	var content []model.Campaign
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.campaigns[id]; ok {
			content = append(content, c)
		}
	}
	return model.NewPage(content, params.PageRequest.Normalize(), int64(len(content))), nil
}

func (f *backendFake) transition(id int64, action model.CampaignAction) (model.Campaign, error) {
	f.called(string(action))
	f.mut.Lock()
	defer f.mut.Unlock()

	c, ok := f.campaigns[id]
	if !ok {
		return model.Campaign{}, notFound(id)
	}
	next, ok := model.NextCampaignStatus(c.Status, action)
	if !ok {
		return model.Campaign{}, &marketing.HTTPError{
			StatusCode: http.StatusConflict,
			Code:       "ILLEGAL_TRANSITION",
			Message:    fmt.Sprintf("cannot %s campaign in status %s", action, c.Status),
		}
	}
	c.Status = next
	f.campaigns[id] = c
	return c, nil
}

func (f *backendFake) ActivateCampaign(_ context.Context, id int64) (model.Campaign, error) {
	return f.transition(id, model.CampaignActionActivate)
}

func (f *backendFake) PauseCampaign(_ context.Context, id int64) (model.Campaign, error) {
	return f.transition(id, model.CampaignActionPause)
}

func (f *backendFake) ScheduleCampaign(_ context.Context, id int64, _ time.Time) (model.Campaign, error) {
	return f.transition(id, model.CampaignActionSchedule)
}

func (f *backendFake) GetCampaignBudget(_ context.Context, id int64) (model.Budget, error) {
	f.called("GetCampaignBudget")
	f.mut.Lock()
	defer f.mut.Unlock()

	c, ok := f.campaigns[id]
	if !ok {
		return model.Budget{}, notFound(id)
	}
	return model.ComputeBudget(c, decimal.Zero), nil
}

func (f *backendFake) UpdateCampaignBudget(
	_ context.Context, id int64, update model.BudgetUpdate,
) (model.Budget, error) {
	f.called("UpdateCampaignBudget")
	f.mut.Lock()
	defer f.mut.Unlock()

	c, ok := f.campaigns[id]
	if !ok {
		return model.Budget{}, notFound(id)
	}
	c.BudgetLimit = update.BudgetLimit
	c.CostPerSend = update.CostPerSend
	f.campaigns[id] = c
	return model.ComputeBudget(c, decimal.Zero), nil
}

func (f *backendFake) GetDashboard(context.Context) (model.Dashboard, error) {
	f.called("GetDashboard")
	f.mut.Lock()
	defer f.mut.Unlock()

	if f.dashboardErr != nil {
		return model.Dashboard{}, f.dashboardErr
	}
	return model.Dashboard{
		Overall: model.OverallPerformance{TotalCampaigns: int64(len(f.campaigns))},
	}, nil
}

func (f *backendFake) GetCampaignTypePerformance(context.Context) ([]model.CampaignTypePerformance, error) {
	f.called("GetCampaignTypePerformance")
	f.mut.Lock()
	defer f.mut.Unlock()

	var count int64
	for _, c := range f.campaigns {
		if c.Status == model.CampaignStatusActive {
			count++
		}
	}
	return []model.CampaignTypePerformance{
		{CampaignType: model.CampaignTypeWelcomeSeries, CampaignCount: count},
	}, nil
}

func (f *backendFake) GetSystemHealth(context.Context) (model.SystemHealth, error) {
	f.called("GetSystemHealth")
	return model.SystemHealth{Status: model.HealthStatusUp}, nil
}

func (f *backendFake) RetryFailed(context.Context) (model.SystemOperationResult, error) {
	f.called("RetryFailed")
	return model.SystemOperationResult{Operation: "retry-failed", Processed: 2}, nil
}

func (f *backendFake) TrackConversion(
	context.Context, string, string, decimal.NullDecimal,
) marketing.TrackResult {
	f.called("TrackConversion")
	return marketing.TrackResult{Err: notFound(0)}
}

type notifierRecorder struct {
	mut    sync.Mutex
	toasts []Toast
}

func (n *notifierRecorder) Notify(_ context.Context, toast Toast) {
	n.mut.Lock()
	defer n.mut.Unlock()
	n.toasts = append(n.toasts, toast)
}

func (n *notifierRecorder) all() []Toast {
	n.mut.Lock()
	defer n.mut.Unlock()
	return append([]Toast(nil), n.toasts...)
}

type serviceTest struct {
	backend  *backendFake
	timer    *timerMock
	notifier *notifierRecorder
	svc      *Service
}

func newServiceTest(_ *testing.T) *serviceTest {
	backend := newBackendFake()
	timer := &timerMock{current: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	notifier := &notifierRecorder{}

	store := querycache.New(memtable.New(4*1024*1024), querycache.WithTimer(timer))
	return &serviceTest{
		backend:  backend,
		timer:    timer,
		notifier: notifier,
		svc:      New(backend, store, WithNotifier(notifier)),
	}
}

func (s *serviceTest) createCampaign(t *testing.T) model.Campaign {
	c, err := s.svc.CreateCampaign(newContext(), model.Campaign{
		Name:            "Welcome",
		CampaignType:    model.CampaignTypeWelcomeSeries,
		Priority:        1,
		TrackingEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}
