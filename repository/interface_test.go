package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestProvider_Transact__Commit(t *testing.T) {
	m := newMockTest(t)

	m.mock.ExpectBegin()
	m.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM campaign WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.mock.ExpectCommit()

	err := m.provider.Transact(newContext(), func(ctx context.Context) error {
		assert.Equal(t, true, InTransaction(ctx))
		_, err := GetTx(ctx).ExecContext(ctx, "DELETE FROM campaign WHERE id = ?", int64(3))
		return err
	})
	assert.Equal(t, nil, err)
}

func TestProvider_Transact__Rollback_On_Error(t *testing.T) {
	m := newMockTest(t)

	m.mock.ExpectBegin()
	m.mock.ExpectRollback()

	err := m.provider.Transact(newContext(), func(ctx context.Context) error {
		return errors.New("some error")
	})
	assert.Equal(t, errors.New("some error"), err)
}

func TestProvider_Transact__Rollback_On_Panic(t *testing.T) {
	m := newMockTest(t)

	m.mock.ExpectBegin()
	m.mock.ExpectRollback()

	assert.PanicsWithValue(t, "some panic", func() {
		_ = m.provider.Transact(newContext(), func(ctx context.Context) error {
			panic("some panic")
		})
	})
}

func TestProvider_Transact__Nested_Joins_Outer(t *testing.T) {
	m := newMockTest(t)

	m.mock.ExpectBegin()
	m.mock.ExpectCommit()

	calls := 0
	err := m.provider.Transact(newContext(), func(ctx context.Context) error {
		outer := GetTx(ctx)
		return m.provider.Transact(ctx, func(ctx context.Context) error {
			calls++
			assert.Same(t, outer, GetTx(ctx))
			return nil
		})
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, calls)
}

func TestGetTx__Outside_Transaction(t *testing.T) {
	m := newMockTest(t)

	assert.PanicsWithValue(t, "Not found transaction", func() {
		GetTx(m.readonly())
	})
	assert.PanicsWithValue(t, "Not found readonly repository", func() {
		GetReadonly(newContext())
	})
}
