package querycache

import (
	"context"
	"errors"
	"sync"
	"time"
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

func newTimerMock() *timerMock {
	return &timerMock{
		current: newTime("2025-01-01T10:00:00Z"),
	}
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

type mapTable struct {
	mut  sync.Mutex
	data map[string][]byte

	getErr error
	setErr error

	getCalls int
	setCalls int
}

var _ Table = &mapTable{}

func newMapTable() *mapTable {
	return &mapTable{
		data: map[string][]byte{},
	}
}

func (m *mapTable) Get(key string) (GetOutput, error) {
	m.mut.Lock()
	defer m.mut.Unlock()

	m.getCalls++
	if m.getErr != nil {
		return GetOutput{}, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return GetOutput{}, nil
	}
	return GetOutput{Found: true, Data: data}, nil
}

func (m *mapTable) Set(key string, data []byte, _ time.Duration) error {
	m.mut.Lock()
	defer m.mut.Unlock()

	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = data
	return nil
}

func (m *mapTable) Delete(key string) error {
	m.mut.Lock()
	defer m.mut.Unlock()

	delete(m.data, key)
	return nil
}

func (m *mapTable) evict(key string) {
	m.mut.Lock()
	defer m.mut.Unlock()

	delete(m.data, key)
}

var errFetch = errors.New("fetch error")

type counter struct {
	mut   sync.Mutex
	calls int
}

func (c *counter) inc() int {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.calls++
	return c.calls
}

func (c *counter) get() int {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.calls
}
