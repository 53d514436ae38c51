package release_hold

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("release_hold: invalid input")

	// ErrForbidden возвращается, когда вызывающий не студент
	ErrForbidden = errors.New("release_hold: only students can release holds")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("release_hold: slot not found")

	// ErrHoldNotOwned возвращается, когда живой hold принадлежит другому студенту
	ErrHoldNotOwned = errors.New("release_hold: slot is held by another student")

	// ErrConcurrentUpdate возвращается, когда слот изменила конкурентная транзакция
	ErrConcurrentUpdate = errors.New("release_hold: slot was changed concurrently")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("release_hold: internal error")
)
