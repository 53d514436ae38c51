package dbmetrics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTx struct {
	DBExecutor
}

func (f *fakeTx) Commit() error   { return nil }
func (f *fakeTx) Rollback() error { return nil }

type fakeDB struct {
	DBExecutor
}

func TestGetExecutor_WithoutTransactionReturnsDB(t *testing.T) {
	db := &fakeDB{}

	assert.False(t, IsInTransaction(context.Background()))
	assert.Same(t, db, GetExecutor(context.Background(), db))
}

func TestGetExecutor_WithTransactionReturnsTx(t *testing.T) {
	db := &fakeDB{}
	tx := &fakeTx{}
	ctx := WithTx(context.Background(), tx)

	assert.True(t, IsInTransaction(ctx))
	assert.Same(t, tx, GetExecutor(ctx, db))

	got, ok := TxFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestWrap_NilMetricsDoesNotPanic(t *testing.T) {
	db := Wrap(&sql.DB{}, nil)

	assert.NotPanics(t, func() {
		db.observe("exec", nil, time.Now())
	})
}
