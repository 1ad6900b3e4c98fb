package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/memtable"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
	"github.com/QuangTung97/marketing/service/query"
)

const testSecret = "test-secret"

type toastRecorder struct {
	mut    sync.Mutex
	toasts []query.Toast
}

func (r *toastRecorder) Notify(_ context.Context, toast query.Toast) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.toasts = append(r.toasts, toast)
}

func (r *toastRecorder) all() []query.Toast {
	r.mut.Lock()
	defer r.mut.Unlock()
	return append([]query.Toast(nil), r.toasts...)
}

type handlerTest struct {
	*serviceTest

	server *httptest.Server
	client *marketing.Client
	query  *query.Service
	toasts *toastRecorder
}

func signToken(t *testing.T, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.Equal(t, nil, err)
	return signed
}

func newHandlerTest(t *testing.T, options ...marketing.Option) *handlerTest {
	s := newServiceTest()
	server := httptest.NewServer(NewHandler(s.service, WithJWTSecret(testSecret)))
	t.Cleanup(server.Close)

	if len(options) == 0 {
		options = append(options, marketing.WithTokenSource(marketing.StaticToken(signToken(t, testSecret))))
	}
	client, err := marketing.New(server.URL, options...)
	require.Equal(t, nil, err)

	toasts := &toastRecorder{}
	store := querycache.New(memtable.New(4 * 1024 * 1024))

	return &handlerTest{
		serviceTest: s,
		server:      server,
		client:      client,
		query:       query.New(client, store, query.WithNotifier(toasts)),
		toasts:      toasts,
	}
}

func TestHandler_Lifecycle_Through_Query_Layer(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c, err := h.query.CreateCampaign(ctx, newCampaign("Spring Sale"))
	require.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusDraft, c.Status)

	read, err := h.query.GetCampaignByID(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusDraft, read.Status)

	_, err = h.query.ActivateCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	read, err = h.query.GetCampaignByID(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, read.Status)

	_, err = h.query.PauseCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	read, err = h.query.GetCampaignByID(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusPaused, read.Status)

	_, err = h.query.ActivateCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	read, err = h.query.GetCampaignByID(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, read.Status)

	assert.Equal(t, []query.Toast{
		{Kind: query.ToastSuccess, Message: "Campaign created successfully"},
		{Kind: query.ToastSuccess, Message: "Campaign activated successfully"},
		{Kind: query.ToastSuccess, Message: "Campaign paused successfully"},
		{Kind: query.ToastSuccess, Message: "Campaign activated successfully"},
	}, h.toasts.all())
}

func TestHandler_Pause_Scheduled_Is_Conflict(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c, err := h.query.CreateCampaign(ctx, newCampaign("Spring Sale"))
	require.Equal(t, nil, err)

	_, err = h.query.ScheduleCampaign(ctx, c.ID, newTime("2025-03-05T08:00:00Z"))
	require.Equal(t, nil, err)

	_, err = h.query.PauseCampaign(ctx, c.ID)
	assert.Equal(t, &marketing.HTTPError{
		StatusCode: http.StatusConflict,
		Method:     http.MethodPost,
		Path:       "/api/marketing/campaigns/1/pause",
		Code:       CodeIllegalTransition,
		Message:    "cannot pause campaign in status SCHEDULED",
	}, err)
	assert.True(t, marketing.IsConflict(err))

	toasts := h.toasts.all()
	assert.Equal(t, query.Toast{
		Kind:    query.ToastError,
		Message: "Failed to pause campaign: cannot pause campaign in status SCHEDULED",
	}, toasts[len(toasts)-1])

	read, err := h.query.GetCampaignByID(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusScheduled, read.Status)
	assert.Equal(t, "2025-03-05T08:00:00Z", read.StartDate.Format(time.RFC3339))
}

func TestHandler_Errors(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	_, err := h.client.GetCampaignByID(ctx, 100)
	assert.Equal(t, true, marketing.IsNotFound(err))
	assert.Equal(t, "campaign 100 not found", err.Error())

	_, err = h.client.CreateCampaign(ctx, model.Campaign{CampaignType: model.CampaignTypeNewsletter})
	assert.Equal(t, true, marketing.IsValidation(err))
	assert.Equal(t, "name is required", err.Error())

	_, err = h.client.GetCampaignsByStatus(ctx, "RUNNING", model.PageRequest{})
	assert.Equal(t, true, marketing.IsValidation(err))

	_, err = h.client.GetAllCampaigns(ctx, marketing.ListParams{SortBy: "secret"})
	assert.Equal(t, true, marketing.IsValidation(err))
}

func TestHandler_Bearer_Token_Required(t *testing.T) {
	h := newHandlerTest(t, marketing.WithTokenSource(marketing.StaticToken("not-a-jwt")))
	ctx := newContext()

	_, err := h.client.GetDashboard(ctx)
	assert.Equal(t, &marketing.HTTPError{
		StatusCode: http.StatusUnauthorized,
		Method:     http.MethodGet,
		Path:       "/api/marketing/dashboard",
		Code:       CodeUnauthorized,
		Message:    "invalid bearer token",
	}, err)

	other := newHandlerTest(t, marketing.WithTokenSource(marketing.StaticToken(signToken(t, "other-secret"))))
	_, err = other.client.GetDashboard(ctx)
	assert.Equal(t, "invalid bearer token", err.Error())

	c := h.activeCampaign(t, newCampaign("Spring Sale"))
	e := h.sentExecution(t, c.ID)

	result := h.client.TrackConversion(ctx, e.TrackingCode, "open", decimal.NullDecimal{})
	assert.Equal(t, true, result.OK())
	assert.Equal(t, model.ExecutionStatusOpened, h.getExecution(t, e.ID).Status)
}

func TestHandler_Executions_And_Tracking(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c := newCampaign("Spring Sale")
	c.CostPerSend = money("0.2")
	c, err := h.query.CreateCampaign(ctx, c)
	require.Equal(t, nil, err)
	_, err = h.query.ActivateCampaign(ctx, c.ID)
	require.Equal(t, nil, err)

	e, err := h.query.CreateExecution(ctx, model.Execution{
		CampaignID:     c.ID,
		ExecutionType:  model.ExecutionTypeEmail,
		RecipientEmail: "user@example.com",
	})
	require.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusPending, e.Status)

	sent, err := h.query.SendExecution(ctx, e.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusSent, sent.Status)
	assert.Equal(t, "0.2", sent.Cost.String())

	result := h.query.TrackConversion(ctx, sent.TrackingCode, "purchase", decimal.NewNullDecimal(decimal.NewFromInt(12)))
	assert.Equal(t, true, result.OK())

	result = h.query.TrackConversion(ctx, "unknown", "open", decimal.NullDecimal{})
	assert.Equal(t, true, marketing.IsNotFound(result.Err))

	executions, err := h.query.GetExecutionsByCampaign(ctx, c.ID, model.PageRequest{})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(executions.Content))
	assert.Equal(t, model.ExecutionStatusConverted, executions.Content[0].Status)
	assert.Equal(t, "12", executions.Content[0].Revenue.String())

	budget, err := h.query.GetCampaignBudget(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, "0.2", budget.Spent.String())

	roi, err := h.query.GetCampaignROI(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 59.0, roi.ROI)

	types, err := h.query.GetCampaignTypePerformance(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(types))

	health, err := h.query.GetSystemHealth(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.HealthStatusUp, health.Status)

	op, err := h.query.ProcessScheduled(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, OperationProcessScheduled, op.Operation)
}

func TestHandler_Failed_Send_Refreshes_Cached_Execution(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c, err := h.query.CreateCampaign(ctx, newCampaign("Spring Sale"))
	require.Equal(t, nil, err)
	_, err = h.query.ActivateCampaign(ctx, c.ID)
	require.Equal(t, nil, err)

	e, err := h.query.CreateExecution(ctx, model.Execution{
		CampaignID:     c.ID,
		ExecutionType:  model.ExecutionTypeEmail,
		RecipientEmail: "user@example.com",
	})
	require.Equal(t, nil, err)

	cached, err := h.query.GetExecutionByID(ctx, e.ID)
	require.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusPending, cached.Status)

	list, err := h.query.GetExecutionsByCampaign(ctx, c.ID, model.PageRequest{})
	require.Equal(t, nil, err)
	require.Equal(t, 1, len(list.Content))
	assert.Equal(t, model.ExecutionStatusPending, list.Content[0].Status)

	h.dispatcher.DispatchFunc = func(ctx context.Context, execution model.Execution) (string, error) {
		return "", errors.New("broker down")
	}

	_, err = h.query.SendExecution(ctx, e.ID)
	assert.Equal(t, true, marketing.IsDispatchFailed(err))

	toasts := h.toasts.all()
	assert.Equal(t, query.Toast{
		Kind:    query.ToastError,
		Message: fmt.Sprintf("Failed to send execution: dispatch execution %d: broker down", e.ID),
	}, toasts[len(toasts)-1])

	after, err := h.query.GetExecutionByID(ctx, e.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusFailed, after.Status)
	assert.Equal(t, "broker down", after.ErrorMessage)

	list, err = h.query.GetExecutionsByCampaign(ctx, c.ID, model.PageRequest{})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(list.Content))
	assert.Equal(t, model.ExecutionStatusFailed, list.Content[0].Status)
}

func TestHandler_Sends_Push_Campaign_Over_Budget(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c := newCampaign("Flash Sale")
	c.BudgetLimit = money("0.3")
	c.CostPerSend = money("0.2")
	c, err := h.query.CreateCampaign(ctx, c)
	require.Equal(t, nil, err)
	_, err = h.query.ActivateCampaign(ctx, c.ID)
	require.Equal(t, nil, err)

	send := func() {
		e, err := h.query.CreateExecution(ctx, model.Execution{
			CampaignID:     c.ID,
			ExecutionType:  model.ExecutionTypeEmail,
			RecipientEmail: "user@example.com",
		})
		require.Equal(t, nil, err)
		_, err = h.query.SendExecution(ctx, e.ID)
		require.Equal(t, nil, err)
	}

	send()

	over, err := h.query.GetCampaignsOverBudget(ctx, model.PageRequest{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(over.Content))

	send()

	over, err = h.query.GetCampaignsOverBudget(ctx, model.PageRequest{})
	assert.Equal(t, nil, err)
	require.Equal(t, 1, len(over.Content))
	assert.Equal(t, c.ID, over.Content[0].ID)
	assert.Equal(t, int64(1), over.TotalElements)

	budget, err := h.query.GetCampaignBudget(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, "0.4", budget.Spent.String())
}

func TestHandler_Delete_Campaign(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c, err := h.query.CreateCampaign(ctx, newCampaign("Spring Sale"))
	require.Equal(t, nil, err)

	page, err := h.query.GetAllCampaigns(ctx, marketing.ListParams{})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), page.TotalElements)

	err = h.query.DeleteCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)

	page, err = h.query.GetAllCampaigns(ctx, marketing.ListParams{})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Equal(t, []model.Campaign{}, page.Content)
}

func TestHandler_Welcome_Campaign_Scenario(t *testing.T) {
	h := newHandlerTest(t)
	ctx := newContext()

	c, err := h.query.CreateCampaign(ctx, model.Campaign{
		Name:            "Welcome",
		CampaignType:    model.CampaignTypeWelcomeSeries,
		Status:          model.CampaignStatusDraft,
		Priority:        1,
		AutoOptimize:    false,
		TrackingEnabled: true,
	})
	require.Equal(t, nil, err)

	c, err = h.query.ActivateCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, c.Status)

	c, err = h.query.PauseCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusPaused, c.Status)

	c, err = h.query.ActivateCampaign(ctx, c.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, c.Status)
	assert.Equal(t, 1, c.Priority)

	draft, err := h.query.CreateCampaign(ctx, model.Campaign{
		Name:         "Welcome",
		CampaignType: model.CampaignTypeWelcomeSeries,
	})
	require.Equal(t, nil, err)

	scheduled, err := h.query.ScheduleCampaign(ctx, draft.ID, newTime("2025-01-01T00:00:00Z"))
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusScheduled, scheduled.Status)

	_, err = h.query.PauseCampaign(ctx, draft.ID)
	assert.Equal(t, true, marketing.IsConflict(err))

	toasts := h.toasts.all()
	assert.Equal(t, query.ToastError, toasts[len(toasts)-1].Kind)
}
