package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotNotAvailable возвращается, когда слот не в ожидаемом статусе (проиграли CAS)
	ErrSlotNotAvailable = errors.New("slot.repository: slot not available")

	// ErrSlotAlreadyExists возвращается при попытке создать второй слот на тот же момент
	ErrSlotAlreadyExists = errors.New("slot.repository: slot already exists at this time")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
