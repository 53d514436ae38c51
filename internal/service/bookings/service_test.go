package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

func seed(t *testing.T, store *storetest.Store, tutor, student uuid.UUID, startsAt time.Time, status domain.BookingStatus) int64 {
	t.Helper()
	b, err := storetest.Bookings{S: store}.Create(context.Background(), &domain.Booking{
		TutorID:   tutor,
		StudentID: student,
		StartsAt:  startsAt,
		Status:    status,
	})
	require.NoError(t, err)
	return b.ID
}

func TestGetByID_ParticipantsOnly(t *testing.T) {
	store := storetest.NewStore()
	svc := NewService(storetest.Bookings{S: store}, storetest.Logger{}, time.Hour)
	tutor, student := uuid.New(), uuid.New()
	id := seed(t, store, tutor, student, time.Now().Add(time.Hour), domain.BookingStatusBooked)

	got, err := svc.GetByID(context.Background(), id, domain.Principal{UserID: student, Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, student.String(), got.StudentID)

	_, err = svc.GetByID(context.Background(), id, domain.Principal{UserID: tutor, Role: domain.RoleTutor})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), id, domain.Principal{UserID: uuid.New(), Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), id+100, domain.Principal{UserID: student, Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings(t *testing.T) {
	store := storetest.NewStore()
	svc := NewService(storetest.Bookings{S: store}, storetest.Logger{}, time.Hour)
	tutor, student := uuid.New(), uuid.New()
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	seed(t, store, tutor, student, base, domain.BookingStatusCompleted)
	seed(t, store, tutor, student, base.Add(24*time.Hour), domain.BookingStatusBooked)
	seed(t, store, tutor, uuid.New(), base.Add(48*time.Hour), domain.BookingStatusBooked)

	mine, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		Principal: domain.Principal{UserID: student, Role: domain.RoleStudent},
	})
	require.NoError(t, err)
	require.Len(t, mine.Bookings, 2)
	assert.True(t, mine.Bookings[0].StartsAt.After(mine.Bookings[1].StartsAt))

	booked, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		Principal: domain.Principal{UserID: tutor, Role: domain.RoleTutor},
		Status:    ptr.Ptr("booked"),
	})
	require.NoError(t, err)
	assert.Len(t, booked.Bookings, 2)

	_, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		Principal: domain.Principal{UserID: student, Role: domain.RoleStudent},
		Status:    ptr.Ptr("pending"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompletePast(t *testing.T) {
	store := storetest.NewStore()
	svc := NewService(storetest.Bookings{S: store}, storetest.Logger{}, time.Hour)
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc.timeProvider = storetest.NewClock(now)

	seed(t, store, uuid.New(), uuid.New(), now.Add(-2*time.Hour), domain.BookingStatusBooked)
	seed(t, store, uuid.New(), uuid.New(), now.Add(-30*time.Minute), domain.BookingStatusBooked)
	seed(t, store, uuid.New(), uuid.New(), now.Add(-5*time.Hour), domain.BookingStatusCanceled)

	completed, err := svc.CompletePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)
}
