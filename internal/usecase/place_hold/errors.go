package place_hold

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("place_hold: invalid input")

	// ErrForbidden возвращается, когда держать слоты может только студент
	ErrForbidden = errors.New("place_hold: only students can hold slots")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("place_hold: slot not found")

	// ErrSlotNotAvailable возвращается, когда слот уже удержан, забронирован или отменен
	ErrSlotNotAvailable = errors.New("place_hold: slot is not available")

	// ErrSlotInPast возвращается, когда слот уже начался
	ErrSlotInPast = errors.New("place_hold: slot has already started")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("place_hold: internal error")
)
