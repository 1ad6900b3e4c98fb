package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

func TestService_CreateCampaign(t *testing.T) {
	s := newServiceTest()

	c := newCampaign("Spring Sale")
	c.Status = model.CampaignStatusActive
	c.BudgetLimit = money("100")

	result, err := s.service.CreateCampaign(newContext(), c)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, model.CampaignStatusDraft, result.Status)
	assert.Equal(t, s.timer.Now(), result.CreatedAt)
	assert.Equal(t, s.timer.Now(), result.UpdatedAt)

	assert.Equal(t, result, s.getCampaign(t, result.ID))
}

func TestService_CreateCampaign__Validation(t *testing.T) {
	s := newServiceTest()

	c := newCampaign(" ")
	_, err := s.service.CreateCampaign(newContext(), c)
	assert.Equal(t, &ValidationError{Message: "name is required"}, err)

	c = newCampaign("Sale")
	c.CampaignType = ""
	_, err = s.service.CreateCampaign(newContext(), c)
	assert.Equal(t, &ValidationError{Message: `invalid campaignType ""`}, err)

	c = newCampaign("Sale")
	c.BudgetLimit = money("-1")
	_, err = s.service.CreateCampaign(newContext(), c)
	assert.Equal(t, &ValidationError{Message: "budgetLimit must not be negative"}, err)

	start := newTime("2025-03-02T00:00:00Z")
	end := newTime("2025-03-01T00:00:00Z")
	c = newCampaign("Sale")
	c.StartDate = &start
	c.EndDate = &end
	_, err = s.service.CreateCampaign(newContext(), c)
	assert.Equal(t, &ValidationError{Message: "endDate must not be before startDate"}, err)
}

func TestService_UpdateCampaign__Keeps_Status_And_Created_At(t *testing.T) {
	s := newServiceTest()
	c := s.activeCampaign(t, newCampaign("Spring Sale"))

	s.timer.advance(time.Hour)

	update := newCampaign("Summer Sale")
	update.Status = model.CampaignStatusDraft
	update.Priority = 3

	result, err := s.service.UpdateCampaign(newContext(), c.ID, update)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Summer Sale", result.Name)
	assert.Equal(t, 3, result.Priority)
	assert.Equal(t, model.CampaignStatusActive, result.Status)
	assert.Equal(t, c.CreatedAt, result.CreatedAt)
	assert.Equal(t, s.timer.Now(), result.UpdatedAt)

	assert.Equal(t, result, s.getCampaign(t, c.ID))

	_, err = s.service.UpdateCampaign(newContext(), 100, update)
	assert.Equal(t, &NotFoundError{Resource: "campaign", Key: "100"}, err)
}

func TestService_DeleteCampaign(t *testing.T) {
	s := newServiceTest()
	c := s.activeCampaign(t, newCampaign("Spring Sale"))
	e := s.createExecution(t, c.ID)

	err := s.service.DeleteCampaign(newContext(), c.ID)
	assert.Equal(t, nil, err)

	_, err = s.service.GetCampaign(newContext(), c.ID)
	assert.Equal(t, &NotFoundError{Resource: "campaign", Key: "1"}, err)

	_, err = s.service.GetExecution(newContext(), e.ID)
	assert.Equal(t, &NotFoundError{Resource: "execution", Key: "1"}, err)

	err = s.service.DeleteCampaign(newContext(), c.ID)
	assert.Equal(t, &NotFoundError{Resource: "campaign", Key: "1"}, err)
}

func TestService_ListCampaigns(t *testing.T) {
	s := newServiceTest()
	s.createCampaign(t, newCampaign("Spring Sale"))
	s.activeCampaign(t, newCampaign("Summer Sale"))
	s.createCampaign(t, newCampaign("Welcome"))

	page, err := s.service.ListCampaigns(newContext(),
		repository.CampaignFilter{Query: "sale"},
		repository.SortOrder{Field: "name", Desc: true},
		model.PageRequest{Page: 0, Size: 1},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, len(page.Content))
	assert.Equal(t, "Summer Sale", page.Content[0].Name)

	page, err = s.service.ListCampaigns(newContext(),
		repository.CampaignFilter{Status: model.CampaignStatusDraft},
		repository.SortOrder{},
		model.PageRequest{},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.DefaultPageSize, page.Size)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, "Spring Sale", page.Content[0].Name)
	assert.Equal(t, "Welcome", page.Content[1].Name)

	page, err = s.service.ListCampaigns(newContext(),
		repository.CampaignFilter{Type: model.CampaignTypeBirthday},
		repository.SortOrder{},
		model.PageRequest{},
	)
	assert.Equal(t, nil, err)
	assert.Equal(t, []model.Campaign{}, page.Content)
}

func TestService_TransitionCampaign__Activate_Pause_Activate(t *testing.T) {
	s := newServiceTest()
	c := s.createCampaign(t, newCampaign("Spring Sale"))

	result, err := s.service.TransitionCampaign(newContext(), c.ID, model.CampaignActionActivate)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, result.Status)
	now := s.timer.Now()
	assert.Equal(t, &now, result.StartDate)

	result, err = s.service.TransitionCampaign(newContext(), c.ID, model.CampaignActionPause)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusPaused, result.Status)

	result, err = s.service.TransitionCampaign(newContext(), c.ID, model.CampaignActionActivate)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusActive, result.Status)

	assert.Equal(t, model.CampaignStatusActive, s.getCampaign(t, c.ID).Status)
}

func TestService_TransitionCampaign__Pause_Scheduled_Rejected(t *testing.T) {
	s := newServiceTest()
	c := s.createCampaign(t, newCampaign("Spring Sale"))

	at := newTime("2025-03-05T08:00:00Z")
	result, err := s.service.ScheduleCampaign(newContext(), c.ID, at)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CampaignStatusScheduled, result.Status)
	assert.Equal(t, &at, result.StartDate)

	_, err = s.service.TransitionCampaign(newContext(), c.ID, model.CampaignActionPause)
	assert.Equal(t, &IllegalTransitionError{
		Entity: "campaign",
		Action: "pause",
		Status: "SCHEDULED",
	}, err)
	assert.Equal(t, "cannot pause campaign in status SCHEDULED", err.Error())

	status, code := errorStatus(err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeIllegalTransition, code)

	assert.Equal(t, model.CampaignStatusScheduled, s.getCampaign(t, c.ID).Status)
}

func TestService_TransitionCampaign__Terminal(t *testing.T) {
	s := newServiceTest()
	c := s.activeCampaign(t, newCampaign("Spring Sale"))

	for _, action := range []model.CampaignAction{model.CampaignActionComplete, model.CampaignActionArchive} {
		_, err := s.service.TransitionCampaign(newContext(), c.ID, action)
		assert.Equal(t, nil, err)
	}

	_, err := s.service.TransitionCampaign(newContext(), c.ID, model.CampaignActionActivate)
	assert.Equal(t, "cannot activate campaign in status ARCHIVED", err.Error())

	_, err = s.service.CreateExecution(newContext(), model.Execution{
		CampaignID:    c.ID,
		ExecutionType: model.ExecutionTypeSMS,
	})
	assert.Equal(t, "cannot create executions of campaign in status ARCHIVED", err.Error())
}

func TestService_CreateExecution(t *testing.T) {
	s := newServiceTest()
	c := s.createCampaign(t, newCampaign("Spring Sale"))

	e := s.createExecution(t, c.ID)
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, model.ExecutionStatusPending, e.Status)
	assert.Equal(t, "code-1", e.TrackingCode)
	assert.Equal(t, DefaultMaxRetries, e.MaxRetries)
	assert.Equal(t, 0, e.RetryCount)
	assert.Equal(t, "0", e.Cost.String())
	assert.Equal(t, e, s.getExecution(t, e.ID))

	future := s.timer.Now().Add(time.Hour)
	scheduled, err := s.service.CreateExecution(newContext(), model.Execution{
		CampaignID:    c.ID,
		ExecutionType: model.ExecutionTypePushNotification,
		ScheduledAt:   &future,
		MaxRetries:    1,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusScheduled, scheduled.Status)
	assert.Equal(t, 1, scheduled.MaxRetries)

	_, err = s.service.CreateExecution(newContext(), model.Execution{
		CampaignID:    100,
		ExecutionType: model.ExecutionTypeEmail,
	})
	assert.Equal(t, &NotFoundError{Resource: "campaign", Key: "100"}, err)

	_, err = s.service.CreateExecution(newContext(), model.Execution{CampaignID: c.ID})
	assert.Equal(t, &ValidationError{Message: `invalid executionType ""`}, err)

	page, err := s.service.ListExecutionsByCampaign(newContext(), c.ID, model.PageRequest{})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestService_SendExecution(t *testing.T) {
	s := newServiceTest()
	c := newCampaign("Spring Sale")
	c.CostPerSend = money("0.25")
	c = s.activeCampaign(t, c)

	e := s.createExecution(t, c.ID)
	s.timer.advance(time.Minute)

	result, err := s.service.SendExecution(newContext(), e.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.ExecutionStatusSent, result.Status)
	assert.Equal(t, "msg-1", result.ExternalMessageID)
	assert.Equal(t, "0.25", result.Cost.String())

	now := s.timer.Now()
	assert.Equal(t, &now, result.SentAt)
	assert.Equal(t, result, s.getExecution(t, e.ID))
	assert.Equal(t, &now, s.getCampaign(t, c.ID).LastExecutedAt)

	calls := s.dispatcher.DispatchCalls()
	assert.Equal(t, 1, len(calls))
	assert.Equal(t, model.ExecutionStatusSending, calls[0].Execution.Status)

	_, err = s.service.SendExecution(newContext(), e.ID)
	assert.Equal(t, &IllegalTransitionError{Entity: "execution", Action: "send", Status: "SENT"}, err)
	assert.Equal(t, 1, len(s.dispatcher.DispatchCalls()))
}

func TestService_SendExecution__Campaign_Not_Active(t *testing.T) {
	s := newServiceTest()
	c := s.createCampaign(t, newCampaign("Spring Sale"))
	e := s.createExecution(t, c.ID)

	_, err := s.service.SendExecution(newContext(), e.ID)
	assert.Equal(t, "cannot send executions of campaign in status DRAFT", err.Error())
	assert.Equal(t, model.ExecutionStatusPending, s.getExecution(t, e.ID).Status)
	assert.Equal(t, 0, len(s.dispatcher.DispatchCalls()))

	_, err = s.service.SendExecution(newContext(), 100)
	assert.Equal(t, &NotFoundError{Resource: "execution", Key: "100"}, err)
}

func TestService_SendExecution__Dispatch_Failed(t *testing.T) {
	s := newServiceTest()
	c := s.activeCampaign(t, newCampaign("Spring Sale"))
	e := s.createExecution(t, c.ID)

	brokerErr := errors.New("broker down")
	s.dispatcher.DispatchFunc = func(ctx context.Context, execution model.Execution) (string, error) {
		return "", brokerErr
	}

	result, err := s.service.SendExecution(newContext(), e.ID)
	assert.Equal(t, &DispatchError{ExecutionID: e.ID, Err: brokerErr}, err)
	assert.True(t, errors.Is(err, brokerErr))
	assert.Equal(t, model.ExecutionStatusFailed, result.Status)
	assert.Equal(t, "broker down", result.ErrorMessage)
	assert.Nil(t, result.SentAt)

	assert.Equal(t, result, s.getExecution(t, e.ID))
	assert.Nil(t, s.getCampaign(t, c.ID).LastExecutedAt)

	status, code := errorStatus(err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, CodeDispatchFailed, code)
}

func TestService_ListExecutionsByStatus(t *testing.T) {
	s := newServiceTest()
	c := s.activeCampaign(t, newCampaign("Spring Sale"))
	s.createExecution(t, c.ID)
	sent := s.sentExecution(t, c.ID)

	page, err := s.service.ListExecutionsByStatus(newContext(), model.ExecutionStatusSent, model.PageRequest{})
	require.Equal(t, nil, err)
	assert.Equal(t, []model.Execution{sent}, page.Content)
}
