//go:build integration

package storage_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/app"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

var testDB *dbmetrics.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=lessons password=lessons dbname=lessons_test sslmode=disable"
	}

	raw, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open test database: %v\n", err)
		os.Exit(1)
	}

	migrator, err := app.NewMigrator(raw)
	if err == nil {
		err = migrator.Run(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate test database: %v\n", err)
		os.Exit(1)
	}

	testDB = dbmetrics.Wrap(raw, nil)

	code := m.Run()
	_ = raw.Close()
	os.Exit(code)
}

func createSlot(t *testing.T, tutorID uuid.UUID, startsAt time.Time) *domain.Slot {
	t.Helper()
	s, err := slot.NewRepository(testDB).Create(context.Background(), &domain.Slot{
		TutorID:    tutorID,
		StartsAt:   startsAt,
		EndsAt:     ptr.Ptr(startsAt.Add(time.Hour)),
		PriceCents: 3000,
		Status:     domain.SlotStatusAvailable,
		Source:     domain.SlotSourceManual,
	})
	require.NoError(t, err)
	return s
}

func TestHoldPlace_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	s := createSlot(t, uuid.New(), now.Add(48*time.Hour))
	holds := hold.NewRepository(testDB)

	studentA, studentB := uuid.New(), uuid.New()

	_, err := holds.Place(ctx, &domain.Hold{ID: uuid.New(), SlotID: s.ID, StudentID: studentA, ExpiresAt: now.Add(15 * time.Minute)}, now)
	require.NoError(t, err)

	// живой hold не заменяется
	_, err = holds.Place(ctx, &domain.Hold{ID: uuid.New(), SlotID: s.ID, StudentID: studentB, ExpiresAt: now.Add(15 * time.Minute)}, now)
	assert.ErrorIs(t, err, hold.ErrHoldConflict)

	// через 16 минут hold истек и заменяется
	later := now.Add(16 * time.Minute)
	_, err = holds.Place(ctx, &domain.Hold{ID: uuid.New(), SlotID: s.ID, StudentID: studentB, ExpiresAt: later.Add(15 * time.Minute)}, later)
	require.NoError(t, err)

	got, err := slot.NewRepository(testDB).GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.HeldBy(later))
	assert.Equal(t, studentB, *got.HeldBy(later))
}

func TestInsertPatternSlots_NoDuplicates(t *testing.T) {
	ctx := context.Background()
	tutorID := uuid.New()
	slots := slot.NewRepository(testDB)
	start := time.Now().UTC().Truncate(time.Hour).Add(72 * time.Hour)

	booked := createSlot(t, tutorID, start)
	require.NoError(t, slots.MarkBooked(ctx, booked.ID, "lesson-test"))

	starts := []time.Time{start, start.Add(time.Hour)}
	created, err := slots.InsertPatternSlots(ctx, tutorID, starts, time.Hour, 2500)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = slots.InsertPatternSlots(ctx, tutorID, starts, time.Hour, 2500)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	all, err := slots.List(ctx, domain.SlotFilter{TutorID: tutorID}, time.Now())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.SlotStatusBooked, all[0].Status)
}

func TestConfirmBooking_OnlyOneActiveBookingPerSlot(t *testing.T) {
	ctx := context.Background()
	tutorID := uuid.New()
	s := createSlot(t, tutorID, time.Now().UTC().Add(96*time.Hour))
	bookings := booking.NewRepository(testDB)
	tx := txmanager.NewTransactionManager(testDB)

	newBooking := func(student uuid.UUID) *domain.Booking {
		return &domain.Booking{
			TutorID:    tutorID,
			StudentID:  student,
			SlotID:     ptr.Ptr(s.ID),
			StartsAt:   s.StartsAt,
			EndsAt:     s.EndsAt,
			PriceCents: s.PriceCents,
			Status:     domain.BookingStatusBooked,
		}
	}

	err := tx.DoSerializable(ctx, func(ctx context.Context) error {
		_, err := bookings.Create(ctx, newBooking(uuid.New()))
		return err
	})
	require.NoError(t, err)

	_, err = bookings.Create(ctx, newBooking(uuid.New()))
	assert.ErrorIs(t, err, booking.ErrSlotAlreadyBooked)
}

func TestAvailability_PatternRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := availability.NewRepository(testDB)
	tutorID := uuid.New()

	_, err := repo.UpsertPattern(ctx, &domain.AvailabilityPattern{
		TutorID:        tutorID,
		Timezone:       "Europe/London",
		HoursByWeekday: map[time.Weekday][]int{time.Monday: {9, 10}},
	})
	require.NoError(t, err)

	got, err := repo.GetPattern(ctx, tutorID)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 10}, got.HoursByWeekday[time.Monday])

	ids, err := repo.ListTutorIDsWithPattern(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, tutorID)
}
