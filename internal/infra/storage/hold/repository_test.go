package hold_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

var now = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func newHold() *domain.Hold {
	return &domain.Hold{ID: uuid.New(), SlotID: 7, StudentID: uuid.New(), ExpiresAt: now.Add(15 * time.Minute)}
}

func TestPlace_SerializationFailureIsRetried(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := dbmetrics.Wrap(raw, nil)
	repo := hold.NewRepository(db)
	tx := txmanager.NewTransactionManager(db)

	// первая попытка падает на самом upsert, вторая проходит
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO lesson_holds").WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO lesson_holds").WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	attempts := 0
	err = tx.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		_, err := repo.Place(ctx, newHold(), now)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_SerializationFailureKeepsDriverError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := dbmetrics.Wrap(raw, nil)
	repo := hold.NewRepository(db)
	tx := txmanager.NewTransactionManager(db)

	for i := 0; i <= txmanager.DefaultMaxRetries; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO lesson_holds").WillReturnError(&pq.Error{Code: "40001"})
		mock.ExpectRollback()
	}

	err = tx.DoSerializable(context.Background(), func(ctx context.Context) error {
		_, err := repo.Place(ctx, newHold(), now)
		return err
	})

	assert.ErrorIs(t, err, txmanager.ErrSerialization)
	assert.ErrorIs(t, err, hold.ErrExecQuery)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
