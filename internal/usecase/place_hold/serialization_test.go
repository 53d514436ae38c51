package place_hold

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	holdRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// Postgres отдает 40001 на самом upsert, когда конкурентный hold уже зафиксирован
func TestExecute_DriverSerializationFailureIsConflict(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := dbmetrics.Wrap(raw, nil)
	store := storetest.NewStore()
	notifier := &storetest.Notifier{}

	uc := NewUseCase(
		storetest.Slots{S: store},
		holdRepo.NewRepository(db),
		notifier,
		txmanager.NewTransactionManager(db),
		storetest.Logger{},
		15*time.Minute,
	)
	uc.timeProvider = storetest.NewClock(now)

	slotID := store.AddSlot(domain.Slot{
		TutorID:    student().UserID,
		StartsAt:   now.Add(time.Hour),
		PriceCents: 3000,
		Status:     domain.SlotStatusAvailable,
	})

	for i := 0; i <= txmanager.DefaultMaxRetries; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO lesson_holds").
			WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"})
		mock.ExpectRollback()
	}

	_, err = uc.Execute(context.Background(), &Request{SlotID: slotID, Principal: student()})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, notifier.Events())
	assert.NoError(t, mock.ExpectationsWereMet())
}
