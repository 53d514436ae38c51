package get_week_schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория шаблонов и отпусков
type AvailabilityRepository interface {
	GetPattern(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilityPattern, error)
	ListTimeOff(ctx context.Context, tutorID uuid.UUID, from, to time.Time) ([]domain.TimeOff, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	List(ctx context.Context, filter domain.SlotFilter, now time.Time) ([]*domain.Slot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetActiveBySlotIDs(ctx context.Context, slotIDs []int64) (map[int64]*domain.Booking, error)
}

// ProfileRepository интерфейс репозитория профилей
type ProfileRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
