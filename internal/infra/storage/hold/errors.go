package hold

import "errors"

var (
	// ErrHoldNotFound возвращается, когда у слота нет hold
	ErrHoldNotFound = errors.New("hold.repository: hold not found")

	// ErrHoldConflict возвращается, когда у слота уже есть живой hold
	ErrHoldConflict = errors.New("hold.repository: slot already has a live hold")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("hold.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("hold.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("hold.repository: failed to scan row")
)
