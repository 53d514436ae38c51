package availability

import "errors"

var (
	// ErrPatternNotFound возвращается, когда тьютор не публиковал шаблон доступности
	ErrPatternNotFound = errors.New("availability not found")

	// ErrAccessDenied возвращается, когда доступность меняет не сам тьютор
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
