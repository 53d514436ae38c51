package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
)

// AvailabilityRepository интерфейс репозитория шаблонов и отпусков
type AvailabilityRepository interface {
	GetPattern(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilityPattern, error)
	UpsertPattern(ctx context.Context, pattern *domain.AvailabilityPattern) (*domain.AvailabilityPattern, error)
	CreateTimeOff(ctx context.Context, timeOff *domain.TimeOff) (*domain.TimeOff, error)
	ListTimeOff(ctx context.Context, tutorID uuid.UUID, from, to time.Time) ([]domain.TimeOff, error)
}

// Syncer материализует слоты по сохраненному шаблону
type Syncer interface {
	Execute(ctx context.Context, req *sync_availability.Request) (*sync_availability.Response, error)
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
