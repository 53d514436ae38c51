package get_user_bookings

import (
	"context"

	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
)

// ParticipantBookings уроки, где пользователь студент или тьютор
type ParticipantBookings interface {
	GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
