package sync_availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// Request модель запроса на синхронизацию слотов тьютора с шаблоном
type Request struct {
	TutorID   uuid.UUID         // ID тьютора
	Principal *domain.Principal // Вызывающий пользователь (nil для фоновой задачи)
	From      *time.Time        // Начало окна (по умолчанию текущее время)
	Weeks     int               // Горизонт в неделях (0 - по умолчанию из конфигурации)
}

// Response модель ответа синхронизации
type Response struct {
	CreatedCount int // Создано новых слотов
	RemovedCount int // Удалено слотов, выпавших из шаблона или попавших в отпуск
}

// AllResponse итог синхронизации всех тьюторов
type AllResponse struct {
	Tutors       int // Обработано тьюторов
	Failed       int // Тьюторов с ошибкой
	CreatedCount int
	RemovedCount int
}

// Defaults значения по умолчанию для новых слотов
type Defaults struct {
	HorizonWeeks  int // Горизонт материализации
	LessonMinutes int // Длительность урока, если не задана в профиле
	PriceCents    int // Цена урока, если тьютор не задал ставку
}
