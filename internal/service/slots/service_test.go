package slots

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/internal/service/slots/models"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

var testNow = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *storetest.Store
	notifier *storetest.Notifier
	clock    *storetest.Clock
	svc      *Service
	tutor    domain.Principal
}

func newFixture() *fixture {
	store := storetest.NewStore()
	n := &storetest.Notifier{}
	clock := storetest.NewClock(testNow)
	svc := NewService(
		storetest.Slots{S: store},
		storetest.Holds{S: store},
		storetest.Profiles{S: store},
		n,
		&storetest.TxManager{},
		storetest.Logger{},
		Defaults{LessonMinutes: 60, PriceCents: 2500},
	)
	svc.SetTimeProvider(clock)
	return &fixture{
		store:    store,
		notifier: n,
		clock:    clock,
		svc:      svc,
		tutor:    domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor},
	}
}

func (f *fixture) addSlot(startsAt time.Time, status domain.SlotStatus) int64 {
	return f.store.AddSlot(domain.Slot{
		TutorID:    f.tutor.UserID,
		StartsAt:   startsAt,
		EndsAt:     ptr.Ptr(startsAt.Add(time.Hour)),
		PriceCents: 3000,
		Status:     status,
	})
}

func TestCreate_UsesDefaultsAndReportsOverlaps(t *testing.T) {
	f := newFixture()
	existing := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)
	f.addSlot(testNow.Add(24*time.Hour+30*time.Minute), domain.SlotStatusCanceled)

	resp, err := f.svc.Create(context.Background(), &models.CreateSlotRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		StartsAt:  testNow.Add(24*time.Hour + 30*time.Minute + time.Second),
	})
	require.NoError(t, err)

	assert.Equal(t, 2500, resp.Slot.PriceCents)
	assert.Equal(t, string(domain.SlotStatusAvailable), resp.Slot.Status)
	assert.Equal(t, string(domain.SlotSourceManual), resp.Slot.Source)
	require.NotNil(t, resp.Slot.EndsAt)
	assert.Equal(t, time.Hour, resp.Slot.EndsAt.Sub(resp.Slot.StartsAt))

	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], fmt.Sprintf("overlaps slot %d", existing))

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notifier.EventSlotCreated, events[0].Type)
}

func TestCreate_TutorProfileDefaults(t *testing.T) {
	f := newFixture()
	f.store.AddTutorProfile(domain.TutorProfile{TutorID: f.tutor.UserID, HourlyRateCents: 6000, LessonMinutes: 45})

	resp, err := f.svc.Create(context.Background(), &models.CreateSlotRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		StartsAt:  testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, 4500, resp.Slot.PriceCents)
	assert.Equal(t, 45*time.Minute, resp.Slot.EndsAt.Sub(resp.Slot.StartsAt))
	assert.Empty(t, resp.Warnings)
}

func TestCreate_Errors(t *testing.T) {
	start := testNow.Add(24 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(f *fixture, req *models.CreateSlotRequest)
		wantErr error
	}{
		{
			name: "student can't create",
			mutate: func(f *fixture, req *models.CreateSlotRequest) {
				req.Principal = domain.Principal{UserID: f.tutor.UserID, Role: domain.RoleStudent}
			},
			wantErr: ErrAccessDenied,
		},
		{
			name: "other tutor",
			mutate: func(f *fixture, req *models.CreateSlotRequest) {
				req.Principal = domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor}
			},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "past start",
			mutate:  func(_ *fixture, req *models.CreateSlotRequest) { req.StartsAt = testNow.Add(-time.Minute) },
			wantErr: ErrSlotInPast,
		},
		{
			name:    "end before start",
			mutate:  func(_ *fixture, req *models.CreateSlotRequest) { req.EndsAt = ptr.Ptr(start.Add(-time.Minute)) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "too long",
			mutate:  func(_ *fixture, req *models.CreateSlotRequest) { req.EndsAt = ptr.Ptr(start.Add(9 * time.Hour)) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative price",
			mutate:  func(_ *fixture, req *models.CreateSlotRequest) { req.PriceCents = ptr.Ptr(-1) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "same start",
			mutate:  func(f *fixture, _ *models.CreateSlotRequest) { f.addSlot(start, domain.SlotStatusCanceled) },
			wantErr: ErrSlotAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := &models.CreateSlotRequest{Principal: f.tutor, TutorID: f.tutor.UserID, StartsAt: start}
			tt.mutate(f, req)

			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.notifier.Events())
		})
	}
}

func TestDelete(t *testing.T) {
	f := newFixture()
	free := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)
	held := f.addSlot(testNow.Add(25*time.Hour), domain.SlotStatusAvailable)
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: held, StudentID: uuid.New(), ExpiresAt: testNow.Add(10 * time.Minute)})
	booked := f.addSlot(testNow.Add(26*time.Hour), domain.SlotStatusBooked)
	started := f.addSlot(testNow.Add(-30*time.Minute), domain.SlotStatusAvailable)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor}, free), ErrAccessDenied)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.tutor, held), ErrSlotNotDeletable)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.tutor, booked), ErrSlotNotDeletable)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.tutor, started), ErrSlotNotDeletable)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.tutor, 999), ErrSlotNotFound)

	require.NoError(t, f.svc.Delete(context.Background(), f.tutor, free))
	assert.Nil(t, f.store.Slot(free))

	// после истечения hold слот снова можно удалить
	f.clock.Advance(15 * time.Minute)
	require.NoError(t, f.svc.Delete(context.Background(), f.tutor, held))
	assert.Nil(t, f.store.Hold(held))

	events := f.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, notifier.EventSlotDeleted, events[0].Type)
}

func TestDeleteAndCancel_SerializationFailureIsConflict(t *testing.T) {
	f := newFixture()
	slotID := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)

	// после исчерпания повторов в цепочке есть и ErrInternal из транзакции
	lost := fmt.Errorf("%w: %w", txmanager.ErrSerialization, ErrInternal)
	f.svc.txManager = &storetest.TxManager{Err: lost}

	err := f.svc.Delete(context.Background(), f.tutor, slotID)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	_, err = f.svc.Cancel(context.Background(), f.tutor, slotID)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	assert.NotNil(t, f.store.Slot(slotID))
	assert.Empty(t, f.notifier.Events())
}

func TestCancel(t *testing.T) {
	f := newFixture()
	held := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: held, StudentID: uuid.New(), ExpiresAt: testNow.Add(10 * time.Minute)})
	booked := f.addSlot(testNow.Add(26*time.Hour), domain.SlotStatusBooked)

	resp, err := f.svc.Cancel(context.Background(), f.tutor, held)
	require.NoError(t, err)
	assert.Equal(t, string(domain.SlotStatusCanceled), resp.Status)
	assert.Nil(t, resp.HoldExpiresAt)
	assert.Nil(t, f.store.Hold(held))
	assert.Equal(t, domain.SlotStatusCanceled, f.store.Slot(held).Status)

	// повторная отмена не ошибка и не публикует событие
	_, err = f.svc.Cancel(context.Background(), f.tutor, held)
	require.NoError(t, err)
	assert.Len(t, f.notifier.Events(), 1)

	_, err = f.svc.Cancel(context.Background(), f.tutor, booked)
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = f.svc.Cancel(context.Background(), domain.Principal{UserID: uuid.New(), Role: domain.RoleStudent}, booked)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestList(t *testing.T) {
	f := newFixture()
	f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)
	held := f.addSlot(testNow.Add(25*time.Hour), domain.SlotStatusAvailable)
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: held, StudentID: uuid.New(), ExpiresAt: testNow.Add(10 * time.Minute)})
	f.addSlot(testNow.Add(26*time.Hour), domain.SlotStatusBooked)

	all, err := f.svc.List(context.Background(), &models.ListSlotsRequest{TutorID: f.tutor.UserID})
	require.NoError(t, err)
	require.Len(t, all.Slots, 3)
	assert.Equal(t, string(domain.SlotStatusHeld), all.Slots[1].Status)
	assert.NotNil(t, all.Slots[1].HoldExpiresAt)

	free, err := f.svc.List(context.Background(), &models.ListSlotsRequest{TutorID: f.tutor.UserID, OnlyAvailable: true})
	require.NoError(t, err)
	assert.Len(t, free.Slots, 1)

	from := testNow.Add(48 * time.Hour)
	_, err = f.svc.List(context.Background(), &models.ListSlotsRequest{TutorID: f.tutor.UserID, From: &from, To: ptr.Ptr(testNow)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.store.SlotsErr = errors.New("connection reset")
	_, err = f.svc.List(context.Background(), &models.ListSlotsRequest{TutorID: f.tutor.UserID})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestGetByID(t *testing.T) {
	f := newFixture()
	id := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)

	got, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, f.tutor.UserID.String(), got.TutorID)

	_, err = f.svc.GetByID(context.Background(), id+1)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestPurgeExpiredHolds(t *testing.T) {
	f := newFixture()
	a := f.addSlot(testNow.Add(24*time.Hour), domain.SlotStatusAvailable)
	b := f.addSlot(testNow.Add(25*time.Hour), domain.SlotStatusAvailable)
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: a, StudentID: uuid.New(), ExpiresAt: testNow.Add(-time.Minute)})
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: b, StudentID: uuid.New(), ExpiresAt: testNow.Add(time.Minute)})

	purged, err := f.svc.PurgeExpiredHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Nil(t, f.store.Hold(a))
	assert.NotNil(t, f.store.Hold(b))
}
