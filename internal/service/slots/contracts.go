package slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotFilter, now time.Time) ([]*domain.Slot, error)
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	Delete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) error
}

// HoldRepository интерфейс репозитория hold
type HoldRepository interface {
	DeleteBySlotID(ctx context.Context, slotID int64) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepository интерфейс репозитория профилей
type ProfileRepository interface {
	GetTutorProfile(ctx context.Context, tutorID uuid.UUID) (*domain.TutorProfile, error)
}

// Notifier интерфейс публикации событий по слотам
type Notifier interface {
	Notify(ctx context.Context, event notifier.SlotEvent)
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
