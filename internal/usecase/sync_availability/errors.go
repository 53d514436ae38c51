package sync_availability

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("sync_availability: invalid input")

	// ErrForbidden возвращается, когда синхронизировать слоты может только сам тьютор
	ErrForbidden = errors.New("sync_availability: only the tutor can sync own slots")

	// ErrPatternNotFound возвращается, когда тьютор не публиковал шаблон доступности
	ErrPatternNotFound = errors.New("sync_availability: availability pattern not found")

	// ErrConcurrentUpdate возвращается, когда слоты тьютора изменила конкурентная транзакция
	ErrConcurrentUpdate = errors.New("sync_availability: slots were changed concurrently")

	// ErrInternal возвращается при внутренней ошибке
	ErrInternal = errors.New("sync_availability: internal error")
)
