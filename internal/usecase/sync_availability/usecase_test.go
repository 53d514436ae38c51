package sync_availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// Воскресенье, 9 марта 2025, 12:00 UTC
var now = time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)

type counter struct{ total int }

func (c *counter) AddMaterializedSlots(n int) { c.total += n }

type fixture struct {
	store    *storetest.Store
	clock    *storetest.Clock
	notifier *storetest.Notifier
	counter  *counter
	uc       *UseCase
	tutorID  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:    storetest.NewStore(),
		clock:    storetest.NewClock(now),
		notifier: &storetest.Notifier{},
		counter:  &counter{},
		tutorID:  uuid.New(),
	}
	f.uc = NewUseCase(
		storetest.Availability{S: f.store},
		storetest.Slots{S: f.store},
		storetest.Profiles{S: f.store},
		f.notifier,
		&storetest.TxManager{},
		storetest.Logger{},
		Defaults{HorizonWeeks: 1, LessonMinutes: 60, PriceCents: 2000},
	)
	f.uc.SetTimeProvider(f.clock)
	f.uc.SetSlotsCounter(f.counter)
	return f
}

func (f *fixture) setPattern(tz string, hours map[time.Weekday][]int) {
	f.store.SetPattern(domain.AvailabilityPattern{TutorID: f.tutorID, Timezone: tz, HoursByWeekday: hours})
}

func (f *fixture) sync(t *testing.T) *Response {
	t.Helper()
	resp, err := f.uc.Execute(context.Background(), &Request{TutorID: f.tutorID})
	require.NoError(t, err)
	return resp
}

func starts(slots []*domain.Slot) []time.Time {
	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartsAt.UTC())
	}
	return out
}

func TestExecute_MondayPatternCreatesTwoSlots(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})

	resp := f.sync(t)

	assert.Equal(t, 2, resp.CreatedCount)
	assert.Equal(t, 0, resp.RemovedCount)
	assert.Equal(t, []time.Time{
		time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC),
	}, starts(f.store.TutorSlots(f.tutorID)))
	assert.Equal(t, 2, f.counter.total)

	for _, s := range f.store.TutorSlots(f.tutorID) {
		assert.Equal(t, domain.SlotSourcePattern, s.Source)
		assert.Equal(t, 2000, s.PriceCents)
		require.NotNil(t, s.EndsAt)
		assert.Equal(t, s.StartsAt.Add(time.Hour), *s.EndsAt)
	}

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notifier.EventSlotsSynced, events[0].Type)
}

func TestExecute_RepeatedSyncCreatesNothing(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})

	f.sync(t)
	resp := f.sync(t)

	assert.Equal(t, 0, resp.CreatedCount)
	assert.Equal(t, 0, resp.RemovedCount)
	assert.Len(t, f.store.TutorSlots(f.tutorID), 2)
	assert.Len(t, f.notifier.Events(), 1)
}

func TestExecute_KeepsBookedSlotAtPlannedInstant(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})
	f.store.AddSlot(domain.Slot{
		TutorID:  f.tutorID,
		StartsAt: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		Status:   domain.SlotStatusBooked,
		Source:   domain.SlotSourcePattern,
	})

	resp := f.sync(t)

	assert.Equal(t, 1, resp.CreatedCount)
	slots := f.store.TutorSlots(f.tutorID)
	require.Len(t, slots, 2)
	assert.Equal(t, domain.SlotStatusBooked, slots[0].Status)
}

func TestExecute_SpringForwardSkipsMissingHour(t *testing.T) {
	f := newFixture()
	f.clock.Advance(20 * 24 * time.Hour) // 29 марта 2025, 12:00 UTC
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Sunday: {1, 2}})

	resp := f.sync(t)

	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, []time.Time{
		time.Date(2025, time.March, 30, 1, 0, 0, 0, time.UTC),
	}, starts(f.store.TutorSlots(f.tutorID)))
}

func TestExecute_TimeOffSuppressesAndPrunes(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})
	f.sync(t)

	f.store.AddTimeOff(domain.TimeOff{
		TutorID:  f.tutorID,
		StartsAt: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
	})

	resp := f.sync(t)

	assert.Equal(t, 0, resp.CreatedCount)
	assert.Equal(t, 2, resp.RemovedCount)
	assert.Empty(t, f.store.TutorSlots(f.tutorID))
}

func TestExecute_PatternChangePrunesOnlyUnclaimed(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})
	f.sync(t)

	slots := f.store.TutorSlots(f.tutorID)
	require.Len(t, slots, 2)
	f.store.AddHold(domain.Hold{ID: uuid.New(), SlotID: slots[0].ID, StudentID: uuid.New(), ExpiresAt: now.Add(time.Minute)})

	f.setPattern("Europe/London", map[time.Weekday][]int{time.Tuesday: {9}})
	resp := f.sync(t)

	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, 1, resp.RemovedCount)

	remaining := f.store.TutorSlots(f.tutorID)
	require.Len(t, remaining, 2)
	assert.Equal(t, slots[0].ID, remaining[0].ID)
	assert.Equal(t, time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC), remaining[1].StartsAt)
}

func TestExecute_TutorProfileDefaults(t *testing.T) {
	f := newFixture()
	f.setPattern("UTC", map[time.Weekday][]int{time.Monday: {9}})
	f.store.AddTutorProfile(domain.TutorProfile{TutorID: f.tutorID, HourlyRateCents: 6000, LessonMinutes: 45})

	f.sync(t)

	slots := f.store.TutorSlots(f.tutorID)
	require.Len(t, slots, 1)
	assert.Equal(t, 4500, slots[0].PriceCents)
	assert.Equal(t, slots[0].StartsAt.Add(45*time.Minute), *slots[0].EndsAt)
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{TutorID: f.tutorID})
	assert.ErrorIs(t, err, ErrPatternNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{TutorID: f.tutorID, Weeks: domain.MaxHorizonWeeks + 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	other := domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor}
	_, err = f.uc.Execute(context.Background(), &Request{TutorID: f.tutorID, Principal: &other})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecuteAll(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})
	second := uuid.New()
	f.store.SetPattern(domain.AvailabilityPattern{TutorID: second, Timezone: "UTC", HoursByWeekday: map[time.Weekday][]int{time.Tuesday: {8}}})
	f.store.SetPattern(domain.AvailabilityPattern{TutorID: uuid.New(), Timezone: "UTC"})

	resp, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Tutors)
	assert.Equal(t, 0, resp.Failed)
	assert.Equal(t, 3, resp.CreatedCount)
	assert.Len(t, f.store.TutorSlots(second), 1)
}

func TestExecute_SerializationFailureIsConflict(t *testing.T) {
	f := newFixture()
	f.setPattern("Europe/London", map[time.Weekday][]int{time.Monday: {9, 10}})
	f.uc.txManager = &storetest.TxManager{Err: fmt.Errorf("%w: %w", txmanager.ErrSerialization, ErrInternal)}

	_, err := f.uc.Execute(context.Background(), &Request{TutorID: f.tutorID})

	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Empty(t, f.store.TutorSlots(f.tutorID))
	assert.Zero(t, f.counter.total)
	assert.Empty(t, f.notifier.Events())
}
