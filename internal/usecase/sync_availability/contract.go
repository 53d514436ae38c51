package sync_availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
)

// AvailabilityRepository интерфейс репозитория шаблонов и отпусков
type AvailabilityRepository interface {
	GetPattern(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilityPattern, error)
	ListTutorIDsWithPattern(ctx context.Context) ([]uuid.UUID, error)
	ListTimeOff(ctx context.Context, tutorID uuid.UUID, from, to time.Time) ([]domain.TimeOff, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	List(ctx context.Context, filter domain.SlotFilter, now time.Time) ([]*domain.Slot, error)
	InsertPatternSlots(ctx context.Context, tutorID uuid.UUID, starts []time.Time, duration time.Duration, priceCents int) (int, error)
	DeleteUnclaimedPatternSlots(ctx context.Context, ids []int64, now time.Time) (int, error)
}

// ProfileRepository интерфейс репозитория профилей
type ProfileRepository interface {
	GetTutorProfile(ctx context.Context, tutorID uuid.UUID) (*domain.TutorProfile, error)
}

// Notifier интерфейс публикации событий по слотам
type Notifier interface {
	Notify(ctx context.Context, event notifier.SlotEvent)
}

// SlotsCounter интерфейс метрики созданных слотов
type SlotsCounter interface {
	AddMaterializedSlots(n int)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
