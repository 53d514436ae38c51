package confirm_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

// UseCase use case для подтверждения бронирования удержанного слота
type UseCase struct {
	slotRepo     SlotRepository
	holdRepo     HoldRepository
	bookingRepo  BookingRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	newRoomID    func() string
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	holdRepo HoldRepository,
	bookingRepo BookingRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		holdRepo:     holdRepo,
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		newRoomID: func() string {
			return domain.RoomIDPrefix + uuid.NewString()
		},
	}
}

// SetTimeProvider подменяет источник текущего времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case подтверждения бронирования
// Слот переводится в booked через CAS, hold удаляется в той же транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConfirmBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("ConfirmBooking: slot=%d, student=%s", req.SlotID, req.Principal.UserID)

	if !domain.CanHold(req.Principal.Role) {
		uc.logger.Warn("ConfirmBooking: user=%s with role=%s can't book slots", req.Principal.UserID, req.Principal.Role)
		return nil, ErrForbidden
	}

	now := uc.timeProvider.Now()

	var (
		booking *domain.Booking
		slot    *domain.Slot
	)

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем слот
		var err error
		slot, err = uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("ConfirmBooking: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("ConfirmBooking: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// 2.2. Слот уже забронирован или отменен
		if slot.Status != domain.SlotStatusAvailable {
			uc.logger.Warn("ConfirmBooking: slot id=%d is %s", req.SlotID, slot.Status)
			return ErrSlotNotAvailable
		}

		// 2.3. Проверяем hold
		hold := slot.Hold
		if hold != nil && hold.IsLive(now) && !hold.IsOwnedBy(req.Principal.UserID) {
			uc.logger.Warn("ConfirmBooking: slot id=%d is held by another student", req.SlotID)
			return ErrSlotNotAvailable
		}
		if hold == nil || !hold.IsLive(now) || !hold.IsOwnedBy(req.Principal.UserID) {
			uc.logger.Warn("ConfirmBooking: student=%s has no live hold on slot id=%d", req.Principal.UserID, req.SlotID)
			return ErrHoldExpired
		}

		if slot.HasStarted(now) {
			uc.logger.Warn("ConfirmBooking: slot id=%d already started", req.SlotID)
			return ErrSlotInPast
		}

		// 2.4. Переводим слот в booked (CAS по статусу available)
		roomID := uc.newRoomID()
		if err := uc.slotRepo.MarkBooked(txCtx, slot.ID, roomID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("ConfirmBooking: slot id=%d was booked concurrently", req.SlotID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("ConfirmBooking: failed to mark slot id=%d booked: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to mark slot booked: %w", ErrInternal, err)
		}

		// 2.5. Создаем бронирование
		booking, err = uc.bookingRepo.Create(txCtx, &domain.Booking{
			TutorID:    slot.TutorID,
			StudentID:  req.Principal.UserID,
			SlotID:     ptr.Ptr(slot.ID),
			StartsAt:   slot.StartsAt,
			EndsAt:     slot.EndsAt,
			PriceCents: slot.PriceCents,
			Status:     domain.BookingStatusBooked,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyBooked) {
				uc.logger.Warn("ConfirmBooking: slot id=%d already has an active booking", req.SlotID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("ConfirmBooking: failed to create booking for slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 2.6. Удаляем hold
		if _, err := uc.holdRepo.DeleteBySlotID(txCtx, slot.ID); err != nil {
			uc.logger.Error("ConfirmBooking: failed to delete hold of slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to delete hold: %w", ErrInternal, err)
		}

		slot.Status = domain.SlotStatusBooked
		slot.RoomID = ptr.Ptr(roomID)
		slot.Hold = nil
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, txmanager.ErrSerialization):
			uc.logger.Warn("ConfirmBooking: slot id=%d lost a concurrent update: %v", req.SlotID, err)
			return nil, ErrSlotNotAvailable
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrSlotNotAvailable),
			errors.Is(err, ErrHoldExpired), errors.Is(err, ErrSlotInPast), errors.Is(err, ErrInternal):
			return nil, err
		}
		uc.logger.Error("ConfirmBooking: transaction failed for slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}

	// 3. Уведомляем подписчиков расписания
	uc.notifier.Notify(ctx, notifier.SlotEvent{
		Type:    notifier.EventSlotBooked,
		SlotID:  slot.ID,
		TutorID: slot.TutorID,
		Status:  string(domain.SlotStatusBooked),
		At:      now,
	})

	uc.logger.Info("ConfirmBooking: created booking id=%d for slot id=%d, student=%s",
		booking.ID, slot.ID, req.Principal.UserID)

	return &Response{
		Booking: booking,
		Slot:    slot,
	}, nil
}
