package confirm_booking

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("confirm_booking: invalid input")

	// ErrForbidden возвращается, когда бронировать может только студент
	ErrForbidden = errors.New("confirm_booking: only students can book slots")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("confirm_booking: slot not found")

	// ErrHoldExpired возвращается, когда у студента нет живого hold на слот
	ErrHoldExpired = errors.New("confirm_booking: hold expired")

	// ErrSlotNotAvailable возвращается, когда слот удержан другим студентом, забронирован или отменен
	ErrSlotNotAvailable = errors.New("confirm_booking: slot is not available")

	// ErrSlotInPast возвращается, когда слот уже начался
	ErrSlotInPast = errors.New("confirm_booking: slot has already started")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("confirm_booking: internal error")
)
