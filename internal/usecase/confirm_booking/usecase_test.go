package confirm_booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
)

var now = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *storetest.Store
	notifier *storetest.Notifier
	uc       *UseCase
	tutorID  uuid.UUID
	student  domain.Principal
}

func newFixture() *fixture {
	f := &fixture{
		store:    storetest.NewStore(),
		notifier: &storetest.Notifier{},
		tutorID:  uuid.New(),
		student:  domain.Principal{UserID: uuid.New(), Role: domain.RoleStudent},
	}
	f.uc = NewUseCase(
		storetest.Slots{S: f.store},
		storetest.Holds{S: f.store},
		storetest.Bookings{S: f.store},
		f.notifier,
		&storetest.TxManager{},
		storetest.Logger{},
	)
	f.uc.timeProvider = storetest.NewClock(now)
	return f
}

func (f *fixture) addHeldSlot(holder uuid.UUID, expiresAt time.Time) int64 {
	end := now.Add(2 * time.Hour)
	id := f.store.AddSlot(domain.Slot{
		TutorID:    f.tutorID,
		StartsAt:   now.Add(time.Hour),
		EndsAt:     &end,
		PriceCents: 4500,
		Status:     domain.SlotStatusAvailable,
	})
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: id, StudentID: holder, ExpiresAt: expiresAt})
	return id
}

func TestExecute_ConfirmsOwnLiveHold(t *testing.T) {
	f := newFixture()
	slotID := f.addHeldSlot(f.student.UserID, now.Add(10*time.Minute))

	resp, err := f.uc.Execute(context.Background(), &Request{SlotID: slotID, Principal: f.student})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusBooked, resp.Booking.Status)
	assert.Equal(t, f.tutorID, resp.Booking.TutorID)
	assert.Equal(t, f.student.UserID, resp.Booking.StudentID)
	assert.Equal(t, 4500, resp.Booking.PriceCents)
	require.NotNil(t, resp.Booking.SlotID)
	assert.Equal(t, slotID, *resp.Booking.SlotID)

	assert.Equal(t, domain.SlotStatusBooked, resp.Slot.Status)
	require.NotNil(t, resp.Slot.RoomID)
	assert.True(t, strings.HasPrefix(*resp.Slot.RoomID, domain.RoomIDPrefix))

	stored := f.store.Slot(slotID)
	assert.Equal(t, domain.SlotStatusBooked, stored.Status)
	assert.Nil(t, stored.Hold)
	assert.Len(t, f.store.Bookings(), 1)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notifier.EventSlotBooked, events[0].Type)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture) int64
		wantErr error
	}{
		{
			name:    "slot not found",
			setup:   func(f *fixture) int64 { return 7 },
			wantErr: ErrSlotNotFound,
		},
		{
			name: "no hold",
			setup: func(f *fixture) int64 {
				return f.store.AddSlot(domain.Slot{TutorID: f.tutorID, StartsAt: now.Add(time.Hour), Status: domain.SlotStatusAvailable})
			},
			wantErr: ErrHoldExpired,
		},
		{
			name:    "own hold expired",
			setup:   func(f *fixture) int64 { return f.addHeldSlot(f.student.UserID, now.Add(-time.Second)) },
			wantErr: ErrHoldExpired,
		},
		{
			name:    "held by another student",
			setup:   func(f *fixture) int64 { return f.addHeldSlot(uuid.New(), now.Add(time.Minute)) },
			wantErr: ErrSlotNotAvailable,
		},
		{
			name: "already booked",
			setup: func(f *fixture) int64 {
				return f.store.AddSlot(domain.Slot{TutorID: f.tutorID, StartsAt: now.Add(time.Hour), Status: domain.SlotStatusBooked})
			},
			wantErr: ErrSlotNotAvailable,
		},
		{
			name: "canceled",
			setup: func(f *fixture) int64 {
				return f.store.AddSlot(domain.Slot{TutorID: f.tutorID, StartsAt: now.Add(time.Hour), Status: domain.SlotStatusCanceled})
			},
			wantErr: ErrSlotNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			slotID := tt.setup(f)

			_, err := f.uc.Execute(context.Background(), &Request{SlotID: slotID, Principal: f.student})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.Bookings())
			assert.Empty(t, f.notifier.Events())
		})
	}
}

func TestExecute_TutorForbidden(t *testing.T) {
	f := newFixture()
	slotID := f.addHeldSlot(f.student.UserID, now.Add(time.Minute))

	_, err := f.uc.Execute(context.Background(), &Request{
		SlotID:    slotID,
		Principal: domain.Principal{UserID: f.tutorID, Role: domain.RoleTutor},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}
