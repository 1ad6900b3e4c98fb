package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func newDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mockTest struct {
	mock     sqlmock.Sqlmock
	provider Provider
}

func newMockTest(t *testing.T) *mockTest {
	db, mock, err := sqlmock.New()
	require.Equal(t, nil, err)

	t.Cleanup(func() {
		assert.Equal(t, nil, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return &mockTest{
		mock:     mock,
		provider: NewProvider(sqlx.NewDb(db, "mysql")),
	}
}

func (m *mockTest) readonly() context.Context {
	return m.provider.Readonly(newContext())
}
