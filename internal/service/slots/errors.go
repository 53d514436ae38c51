package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAccessDenied возвращается, когда слотом управляет не его тьютор
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrSlotInPast возвращается при создании слота в прошлом
	ErrSlotInPast = errors.New("slot starts in the past")

	// ErrSlotAlreadyExists возвращается, когда у тьютора уже есть слот на это время
	ErrSlotAlreadyExists = errors.New("slot already exists at this time")

	// ErrSlotNotDeletable возвращается, когда слот удержан, забронирован, отменен или уже начался
	ErrSlotNotDeletable = errors.New("slot cannot be deleted")

	// ErrCannotCancel возвращается при отмене забронированного слота
	ErrCannotCancel = errors.New("booked slot cannot be canceled")

	// ErrConcurrentUpdate возвращается, когда слот изменила конкурентная транзакция
	ErrConcurrentUpdate = errors.New("slot was changed concurrently")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
