package release_hold

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// UseCase use case для снятия hold со слота
type UseCase struct {
	slotRepo     SlotRepository
	holdRepo     HoldRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	holdRepo HoldRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		holdRepo:     holdRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case снятия hold
// Снятие со слота без hold считается успешным
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReleaseHold: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("ReleaseHold: slot=%d, student=%s", req.SlotID, req.Principal.UserID)

	if !domain.CanHold(req.Principal.Role) {
		uc.logger.Warn("ReleaseHold: user=%s with role=%s can't release holds", req.Principal.UserID, req.Principal.Role)
		return nil, ErrForbidden
	}

	now := uc.timeProvider.Now()

	var (
		released bool
		wasLive  bool
		tutorID  uuid.UUID
	)

	// 2. Удаляем hold в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем слот
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("ReleaseHold: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("ReleaseHold: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}
		tutorID = slot.TutorID

		// 2.2. Нечего снимать
		if slot.Hold == nil {
			return nil
		}

		// 2.3. Чужой живой hold не трогаем
		wasLive = slot.Hold.IsLive(now)
		if wasLive && !slot.Hold.IsOwnedBy(req.Principal.UserID) {
			uc.logger.Warn("ReleaseHold: slot id=%d is held by another student", req.SlotID)
			return ErrHoldNotOwned
		}

		// 2.4. Удаляем свой или истекший hold
		released, err = uc.holdRepo.DeleteBySlotID(txCtx, slot.ID)
		if err != nil {
			uc.logger.Error("ReleaseHold: failed to delete hold of slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to delete hold: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("ReleaseHold: slot id=%d lost a concurrent update: %v", req.SlotID, err)
			return nil, ErrConcurrentUpdate
		}
		if errors.Is(err, ErrSlotNotFound) || errors.Is(err, ErrHoldNotOwned) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("ReleaseHold: transaction failed for slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}

	// 3. Уведомляем, только если слот снова стал доступен
	if released && wasLive {
		uc.notifier.Notify(ctx, notifier.SlotEvent{
			Type:    notifier.EventHoldReleased,
			SlotID:  req.SlotID,
			TutorID: tutorID,
			Status:  string(domain.SlotStatusAvailable),
			At:      now,
		})
	}

	uc.logger.Info("ReleaseHold: slot id=%d released=%t", req.SlotID, released)

	return &Response{Released: released}, nil
}
