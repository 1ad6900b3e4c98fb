package backend

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository/memrepo"
)

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
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

type serviceTest struct {
	store      *memrepo.Store
	timer      *timerMock
	dispatcher *DispatcherMock
	service    *Service
}

func newRepos(store *memrepo.Store) Repos {
	return Repos{
		Provider:  store.Provider(),
		Campaign:  store.Campaign(),
		Execution: store.Execution(),
		Metric:    store.Metric(),
	}
}

func newServiceTest() *serviceTest {
	store := memrepo.New()
	timer := &timerMock{current: newTime("2025-03-01T10:00:00Z")}
	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, execution model.Execution) (string, error) {
			return fmt.Sprintf("msg-%d", execution.ID), nil
		},
	}

	var codeMut sync.Mutex
	codeSeq := 0
	newCode := func() string {
		codeMut.Lock()
		defer codeMut.Unlock()
		codeSeq++
		return fmt.Sprintf("code-%d", codeSeq)
	}

	return &serviceTest{
		store:      store,
		timer:      timer,
		dispatcher: dispatcher,
		service: NewService(newRepos(store), dispatcher,
			WithTimer(timer),
			WithTrackingCodeGenerator(newCode),
		),
	}
}

func newCampaign(name string) model.Campaign {
	return model.Campaign{
		Name:         name,
		CampaignType: model.CampaignTypeNewsletter,
	}
}

func (s *serviceTest) createCampaign(t *testing.T, c model.Campaign) model.Campaign {
	result, err := s.service.CreateCampaign(newContext(), c)
	require.Equal(t, nil, err)
	return result
}

func (s *serviceTest) activeCampaign(t *testing.T, c model.Campaign) model.Campaign {
	created := s.createCampaign(t, c)
	result, err := s.service.TransitionCampaign(newContext(), created.ID, model.CampaignActionActivate)
	require.Equal(t, nil, err)
	return result
}

func (s *serviceTest) createExecution(t *testing.T, campaignID int64) model.Execution {
	result, err := s.service.CreateExecution(newContext(), model.Execution{
		CampaignID:     campaignID,
		ExecutionType:  model.ExecutionTypeEmail,
		RecipientEmail: "user@example.com",
	})
	require.Equal(t, nil, err)
	return result
}

func (s *serviceTest) sentExecution(t *testing.T, campaignID int64) model.Execution {
	e := s.createExecution(t, campaignID)
	result, err := s.service.SendExecution(newContext(), e.ID)
	require.Equal(t, nil, err)
	return result
}

func (s *serviceTest) getExecution(t *testing.T, id int64) model.Execution {
	e, err := s.service.GetExecution(newContext(), id)
	require.Equal(t, nil, err)
	return e
}

func (s *serviceTest) getCampaign(t *testing.T, id int64) model.Campaign {
	c, err := s.service.GetCampaign(newContext(), id)
	require.Equal(t, nil, err)
	return c
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
