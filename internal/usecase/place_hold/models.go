package place_hold

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// Request модель запроса на удержание слота
type Request struct {
	SlotID    int64            // ID слота
	Principal domain.Principal // Вызывающий пользователь
}

// Response модель ответа с удержанным слотом
type Response struct {
	Slot          *domain.Slot // Слот с актуальным hold
	HoldExpiresAt time.Time    // Момент истечения hold
}
