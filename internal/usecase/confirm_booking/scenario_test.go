package confirm_booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/usecase/confirm_booking"
	"github.com/m04kA/SMC-LessonService/internal/usecase/place_hold"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
)

// Сценарии hold -> book на общем хранилище
type flow struct {
	store   *storetest.Store
	hold    *place_hold.UseCase
	confirm *confirm_booking.UseCase
}

func newFlow(clock *storetest.Clock) *flow {
	store := storetest.NewStore()
	n := &storetest.Notifier{}
	tx := &storetest.TxManager{}

	hold := place_hold.NewUseCase(storetest.Slots{S: store}, storetest.Holds{S: store}, n, tx, storetest.Logger{}, 15*time.Minute)
	hold.SetTimeProvider(clock)

	confirm := confirm_booking.NewUseCase(storetest.Slots{S: store}, storetest.Holds{S: store}, storetest.Bookings{S: store}, n, tx, storetest.Logger{})
	confirm.SetTimeProvider(clock)

	return &flow{store: store, hold: hold, confirm: confirm}
}

func newStudent() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleStudent}
}

func TestScenario_HoldConflictThenBook(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f := newFlow(storetest.NewClock(now))
	slotID := f.store.AddSlot(domain.Slot{TutorID: uuid.New(), StartsAt: now.Add(24 * time.Hour), Status: domain.SlotStatusAvailable})
	ctx := context.Background()
	a, b := newStudent(), newStudent()

	_, err := f.hold.Execute(ctx, &place_hold.Request{SlotID: slotID, Principal: a})
	require.NoError(t, err)

	_, err = f.hold.Execute(ctx, &place_hold.Request{SlotID: slotID, Principal: b})
	assert.ErrorIs(t, err, place_hold.ErrSlotNotAvailable)

	resp, err := f.confirm.Execute(ctx, &confirm_booking.Request{SlotID: slotID, Principal: a})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotStatusBooked, resp.Slot.Status)

	_, err = f.hold.Execute(ctx, &place_hold.Request{SlotID: slotID, Principal: b})
	assert.ErrorIs(t, err, place_hold.ErrSlotNotAvailable)

	_, err = f.confirm.Execute(ctx, &confirm_booking.Request{SlotID: slotID, Principal: b})
	assert.ErrorIs(t, err, confirm_booking.ErrSlotNotAvailable)

	assert.Len(t, f.store.Bookings(), 1)
}

func TestScenario_HoldExpiresAndAnotherStudentTakesSlot(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	clock := storetest.NewClock(now)
	f := newFlow(clock)
	slotID := f.store.AddSlot(domain.Slot{TutorID: uuid.New(), StartsAt: now.Add(24 * time.Hour), Status: domain.SlotStatusAvailable})
	ctx := context.Background()
	a, c := newStudent(), newStudent()

	_, err := f.hold.Execute(ctx, &place_hold.Request{SlotID: slotID, Principal: a})
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	assert.Equal(t, domain.SlotStatusAvailable, f.store.Slot(slotID).EffectiveStatus(clock.Now()))

	_, err = f.confirm.Execute(ctx, &confirm_booking.Request{SlotID: slotID, Principal: a})
	assert.ErrorIs(t, err, confirm_booking.ErrHoldExpired)

	resp, err := f.hold.Execute(ctx, &place_hold.Request{SlotID: slotID, Principal: c})
	require.NoError(t, err)
	assert.Equal(t, c.UserID, *resp.Slot.HeldBy(clock.Now()))
	assert.Equal(t, clock.Now().Add(15*time.Minute), resp.HoldExpiresAt)
}
