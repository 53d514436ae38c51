package place_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	holdRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// UseCase use case для удержания слота студентом
type UseCase struct {
	slotRepo     SlotRepository
	holdRepo     HoldRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	holdTTL      time.Duration
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	holdRepo HoldRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
	holdTTL time.Duration,
) *UseCase {
	if holdTTL <= 0 {
		holdTTL = domain.DefaultHoldTTL
	}
	return &UseCase{
		slotRepo:     slotRepo,
		holdRepo:     holdRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		holdTTL:      holdTTL,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case удержания слота
// Повторный hold того же студента возвращает существующий hold без продления
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("PlaceHold: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("PlaceHold: slot=%d, student=%s", req.SlotID, req.Principal.UserID)

	// 2. Держать слоты может только студент
	if !domain.CanHold(req.Principal.Role) {
		uc.logger.Warn("PlaceHold: user=%s with role=%s can't hold slots", req.Principal.UserID, req.Principal.Role)
		return nil, ErrForbidden
	}

	now := uc.timeProvider.Now()

	var (
		result  *domain.Slot
		created bool
	)

	// 3. Проверяем слот и ставим hold в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем слот
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("PlaceHold: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("PlaceHold: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// 3.2. Живой hold этого же студента возвращаем как есть
		if slot.Status == domain.SlotStatusAvailable && slot.Hold != nil &&
			slot.Hold.IsLive(now) && slot.Hold.IsOwnedBy(req.Principal.UserID) {
			result = slot
			return nil
		}

		// 3.3. Проверяем эффективный статус
		if status := slot.EffectiveStatus(now); status != domain.SlotStatusAvailable {
			uc.logger.Warn("PlaceHold: slot id=%d is %s", req.SlotID, status)
			return ErrSlotNotAvailable
		}

		// 3.4. Слот должен быть в будущем
		if slot.HasStarted(now) {
			uc.logger.Warn("PlaceHold: slot id=%d starts at %s, already started", req.SlotID, slot.StartsAt.Format(time.RFC3339))
			return ErrSlotInPast
		}

		// 3.5. Ставим hold (CAS: заменяет только истекший)
		hold, err := uc.holdRepo.Place(txCtx, &domain.Hold{
			ID:        uuid.New(),
			SlotID:    slot.ID,
			StudentID: req.Principal.UserID,
			ExpiresAt: now.Add(uc.holdTTL),
		}, now)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldConflict) {
				uc.logger.Warn("PlaceHold: slot id=%d was held concurrently", req.SlotID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("PlaceHold: failed to place hold on slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to place hold: %w", ErrInternal, err)
		}

		slot.Hold = hold
		result = slot
		created = true
		return nil
	})
	if err != nil {
		// Конфликт сериализации проверяем первым: в цепочке может быть и ErrInternal
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("PlaceHold: slot id=%d lost a concurrent update: %v", req.SlotID, err)
			return nil, ErrSlotNotAvailable
		}
		if errors.Is(err, ErrSlotNotFound) || errors.Is(err, ErrSlotNotAvailable) ||
			errors.Is(err, ErrSlotInPast) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("PlaceHold: transaction failed for slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}

	// 4. Уведомляем подписчиков расписания
	if created {
		uc.notifier.Notify(ctx, notifier.SlotEvent{
			Type:    notifier.EventHoldPlaced,
			SlotID:  result.ID,
			TutorID: result.TutorID,
			Status:  string(domain.SlotStatusHeld),
			At:      now,
		})
	}

	uc.logger.Info("PlaceHold: slot id=%d held by student=%s until %s",
		result.ID, req.Principal.UserID, result.Hold.ExpiresAt.Format(time.RFC3339))

	return &Response{
		Slot:          result,
		HoldExpiresAt: result.Hold.ExpiresAt,
	}, nil
}
