package confirm_booking

import "github.com/m04kA/SMC-LessonService/internal/domain"

// Request модель запроса на подтверждение бронирования
type Request struct {
	SlotID    int64            // ID удержанного слота
	Principal domain.Principal // Вызывающий пользователь
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking // Созданное бронирование
	Slot    *domain.Slot    // Слот в статусе booked с комнатой
}
