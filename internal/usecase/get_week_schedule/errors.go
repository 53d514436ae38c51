package get_week_schedule

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("get_week_schedule: invalid input")

	// ErrForbidden возвращается, когда расписание запрашивает не сам тьютор
	ErrForbidden = errors.New("get_week_schedule: only the tutor can view own schedule")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("get_week_schedule: internal error")
)

// Предупреждения частичного ответа
const (
	WarnBookingsUnavailable = "bookings are temporarily unavailable, student details are hidden"
	WarnProfilesUnavailable = "student profiles are temporarily unavailable"
)
