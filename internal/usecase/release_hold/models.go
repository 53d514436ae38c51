package release_hold

import "github.com/m04kA/SMC-LessonService/internal/domain"

// Request модель запроса на снятие hold
type Request struct {
	SlotID    int64            // ID слота
	Principal domain.Principal // Вызывающий пользователь
}

// Response модель ответа
type Response struct {
	Released bool // true, если hold был удален этим вызовом
}
