package memrepo

import (
	"context"
	"sync"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

// Store keeps campaigns, executions and metrics in memory. Transactions are
// serialized by a single lock and rolled back by restoring a snapshot.
type Store struct {
	mut sync.Mutex

	data tables
}

type tables struct {
	campaigns  map[int64]model.Campaign
	executions map[int64]model.Execution
	metrics    map[int64]model.Metric

	lastCampaignID  int64
	lastExecutionID int64
	lastMetricID    int64
}

func newTables() tables {
	return tables{
		campaigns:  map[int64]model.Campaign{},
		executions: map[int64]model.Execution{},
		metrics:    map[int64]model.Metric{},
	}
}

func (t tables) clone() tables {
	result := t
	result.campaigns = make(map[int64]model.Campaign, len(t.campaigns))
	for k, v := range t.campaigns {
		result.campaigns[k] = v
	}
	result.executions = make(map[int64]model.Execution, len(t.executions))
	for k, v := range t.executions {
		result.executions[k] = v
	}
	result.metrics = make(map[int64]model.Metric, len(t.metrics))
	for k, v := range t.metrics {
		result.metrics[k] = v
	}
	return result
}

// New ...
func New() *Store {
	return &Store{data: newTables()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

func (s *Store) read(ctx context.Context, fn func(t *tables)) {
	if s.inTx(ctx) {
		fn(&s.data)
		return
	}
	s.mut.Lock()
	defer s.mut.Unlock()
	fn(&s.data)
}

func (s *Store) write(ctx context.Context, fn func(t *tables)) {
	if !s.inTx(ctx) {
		panic("Not found transaction")
	}
	fn(&s.data)
}

type provider struct {
	store *Store
}

var _ repository.Provider = provider{}

// Provider ...
func (s *Store) Provider() repository.Provider {
	return provider{store: s}
}

// Transact runs fn holding the store lock, a nested call joins the outer transaction
func (p provider) Transact(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := p.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.data = snapshot
			panic(r)
		} else if err != nil {
			s.data = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// Readonly ...
func (p provider) Readonly(ctx context.Context) context.Context {
	return ctx
}
