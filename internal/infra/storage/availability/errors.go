package availability

import "errors"

var (
	// ErrPatternNotFound возвращается, когда тьютор не публиковал шаблон доступности
	ErrPatternNotFound = errors.New("availability.repository: pattern not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")

	// ErrEncodePattern возвращается, когда часы шаблона не удалось (де)сериализовать
	ErrEncodePattern = errors.New("availability.repository: failed to encode pattern hours")
)
