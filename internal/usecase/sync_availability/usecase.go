package sync_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	profileRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/profile"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/internal/materializer"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// UseCase use case для материализации слотов по шаблону доступности
type UseCase struct {
	availabilityRepo AvailabilityRepository
	slotRepo         SlotRepository
	profileRepo      ProfileRepository
	notifier         Notifier
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
	counter          SlotsCounter
	defaults         Defaults
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availabilityRepo AvailabilityRepository,
	slotRepo SlotRepository,
	profileRepo ProfileRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
	defaults Defaults,
) *UseCase {
	if defaults.HorizonWeeks <= 0 {
		defaults.HorizonWeeks = domain.DefaultHorizonWeeks
	}
	if defaults.LessonMinutes <= 0 {
		defaults.LessonMinutes = domain.DefaultLessonMinutes
	}
	return &UseCase{
		availabilityRepo: availabilityRepo,
		slotRepo:         slotRepo,
		profileRepo:      profileRepo,
		notifier:         notifier,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		defaults:         defaults,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// SetSlotsCounter подключает метрику созданных слотов
func (uc *UseCase) SetSlotsCounter(counter SlotsCounter) {
	uc.counter = counter
}

// Execute выполняет синхронизацию слотов одного тьютора
// Существующие слоты любого статуса не изменяются, создаются только недостающие
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SyncAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Ручной запуск разрешен только самому тьютору
	if req.Principal != nil && !domain.CanManageSlot(*req.Principal, req.TutorID) {
		uc.logger.Warn("SyncAvailability: user=%s can't sync slots of tutor=%s", req.Principal.UserID, req.TutorID)
		return nil, ErrForbidden
	}

	// 3. Вычисляем окно
	now := uc.timeProvider.Now()
	from := now
	if req.From != nil && req.From.After(now) {
		from = *req.From
	}
	weeks := req.Weeks
	if weeks == 0 {
		weeks = uc.defaults.HorizonWeeks
	}
	to := from.AddDate(0, 0, weeks*domain.DaysPerWeek)

	uc.logger.Info("SyncAvailability: tutor=%s, window=%s..%s",
		req.TutorID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	result := &Response{}

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Шаблон доступности
		pattern, err := uc.availabilityRepo.GetPattern(txCtx, req.TutorID)
		if err != nil {
			if errors.Is(err, availabilityRepo.ErrPatternNotFound) {
				uc.logger.Warn("SyncAvailability: tutor=%s has no pattern", req.TutorID)
				return ErrPatternNotFound
			}
			uc.logger.Error("SyncAvailability: failed to get pattern of tutor=%s: %v", req.TutorID, err)
			return fmt.Errorf("%w: failed to get pattern: %w", ErrInternal, err)
		}

		// 4.2. Параметры новых слотов
		duration, price, err := uc.slotDefaults(txCtx, req)
		if err != nil {
			return err
		}

		// 4.3. Отпуска в окне
		timeOff, err := uc.availabilityRepo.ListTimeOff(txCtx, req.TutorID, from, to)
		if err != nil {
			uc.logger.Error("SyncAvailability: failed to list time off of tutor=%s: %v", req.TutorID, err)
			return fmt.Errorf("%w: failed to list time off: %w", ErrInternal, err)
		}

		// 4.4. Существующие слоты в окне
		existing, err := uc.slotRepo.List(txCtx, domain.SlotFilter{TutorID: req.TutorID, From: &from, To: &to}, now)
		if err != nil {
			uc.logger.Error("SyncAvailability: failed to list slots of tutor=%s: %v", req.TutorID, err)
			return fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
		}

		// 4.5. План и сверка
		planned, err := materializer.Plan(pattern, timeOff, from, to, now)
		if err != nil {
			uc.logger.Error("SyncAvailability: failed to plan slots of tutor=%s: %v", req.TutorID, err)
			return fmt.Errorf("%w: failed to plan slots: %w", ErrInternal, err)
		}
		rec, err := materializer.Reconcile(planned, existing, pattern, timeOff, now)
		if err != nil {
			uc.logger.Error("SyncAvailability: failed to reconcile slots of tutor=%s: %v", req.TutorID, err)
			return fmt.Errorf("%w: failed to reconcile slots: %w", ErrInternal, err)
		}

		// 4.6. Создаем недостающие слоты
		if len(rec.Create) > 0 {
			result.CreatedCount, err = uc.slotRepo.InsertPatternSlots(txCtx, req.TutorID, rec.Create, duration, price)
			if err != nil {
				uc.logger.Error("SyncAvailability: failed to insert slots of tutor=%s: %v", req.TutorID, err)
				return fmt.Errorf("%w: failed to insert slots: %w", ErrInternal, err)
			}
		}

		// 4.7. Удаляем невостребованные слоты шаблона
		if len(rec.Prune) > 0 {
			result.RemovedCount, err = uc.slotRepo.DeleteUnclaimedPatternSlots(txCtx, rec.Prune, now)
			if err != nil {
				uc.logger.Error("SyncAvailability: failed to prune slots of tutor=%s: %v", req.TutorID, err)
				return fmt.Errorf("%w: failed to prune slots: %w", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("SyncAvailability: tutor=%s lost a concurrent update: %v", req.TutorID, err)
			return nil, ErrConcurrentUpdate
		}
		if errors.Is(err, ErrPatternNotFound) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("SyncAvailability: transaction failed for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}

	if uc.counter != nil {
		uc.counter.AddMaterializedSlots(result.CreatedCount)
	}

	if result.CreatedCount > 0 || result.RemovedCount > 0 {
		uc.notifier.Notify(ctx, notifier.SlotEvent{
			Type:    notifier.EventSlotsSynced,
			TutorID: req.TutorID,
			At:      now,
		})
	}

	uc.logger.Info("SyncAvailability: tutor=%s, created=%d, removed=%d",
		req.TutorID, result.CreatedCount, result.RemovedCount)

	return result, nil
}

// ExecuteAll синхронизирует всех тьюторов с опубликованным шаблоном
// Ошибка одного тьютора не прерывает обработку остальных
func (uc *UseCase) ExecuteAll(ctx context.Context) (*AllResponse, error) {
	tutorIDs, err := uc.availabilityRepo.ListTutorIDsWithPattern(ctx)
	if err != nil {
		uc.logger.Error("SyncAvailability: failed to list tutors: %v", err)
		return nil, fmt.Errorf("%w: failed to list tutors: %w", ErrInternal, err)
	}

	result := &AllResponse{}
	for _, tutorID := range tutorIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Tutors++
		resp, err := uc.Execute(ctx, &Request{TutorID: tutorID})
		if err != nil {
			result.Failed++
			uc.logger.Warn("SyncAvailability: tutor=%s skipped: %v", tutorID, err)
			continue
		}
		result.CreatedCount += resp.CreatedCount
		result.RemovedCount += resp.RemovedCount
	}

	uc.logger.Info("SyncAvailability: synced %d tutors (%d failed), created=%d, removed=%d",
		result.Tutors, result.Failed, result.CreatedCount, result.RemovedCount)

	return result, nil
}

// slotDefaults возвращает длительность и цену новых слотов по профилю тьютора
func (uc *UseCase) slotDefaults(ctx context.Context, req *Request) (time.Duration, int, error) {
	minutes := uc.defaults.LessonMinutes
	price := uc.defaults.PriceCents

	profile, err := uc.profileRepo.GetTutorProfile(ctx, req.TutorID)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileNotFound) {
			return time.Duration(minutes) * time.Minute, price, nil
		}
		uc.logger.Error("SyncAvailability: failed to get profile of tutor=%s: %v", req.TutorID, err)
		return 0, 0, fmt.Errorf("%w: failed to get tutor profile: %w", ErrInternal, err)
	}

	if profile.LessonMinutes > 0 {
		minutes = profile.LessonMinutes
	}
	if profile.HourlyRateCents > 0 {
		price = profile.LessonPriceCents()
	}

	return time.Duration(minutes) * time.Minute, price, nil
}
