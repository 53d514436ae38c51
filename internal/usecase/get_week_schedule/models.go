package get_week_schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// DefaultTimezone используется, если тьютор не публиковал шаблон
const DefaultTimezone = "UTC"

// Request модель запроса недельного расписания
type Request struct {
	TutorID   uuid.UUID        // ID тьютора
	WeekOf    time.Time        // Любая дата недели (YYYY-MM-DD), нулевое значение - текущая неделя
	Principal domain.Principal // Вызывающий пользователь
}

// Response модель ответа
type Response struct {
	Schedule *domain.WeekSchedule
}
