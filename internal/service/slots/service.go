package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	profileRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/profile"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	"github.com/m04kA/SMC-LessonService/internal/service/slots/models"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Defaults значения по умолчанию для слотов, созданных вручную
type Defaults struct {
	LessonMinutes int
	PriceCents    int
}

// Service сервис для работы со слотами тьютора
type Service struct {
	slotRepo     SlotRepository
	holdRepo     HoldRepository
	profileRepo  ProfileRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	defaults     Defaults
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	holdRepo HoldRepository,
	profileRepo ProfileRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
	defaults Defaults,
) *Service {
	if defaults.LessonMinutes <= 0 {
		defaults.LessonMinutes = domain.DefaultLessonMinutes
	}
	return &Service{
		slotRepo:     slotRepo,
		holdRepo:     holdRepo,
		profileRepo:  profileRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: realTimeProvider{},
		logger:       logger,
		defaults:     defaults,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (s *Service) SetTimeProvider(tp TimeProvider) {
	s.timeProvider = tp
}

// List получает слоты тьютора за период
func (s *Service) List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	s.logger.Info("List: fetching slots for tutor=%s, onlyAvailable=%t", req.TutorID, req.OnlyAvailable)

	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		s.logger.Warn("List: invalid period for tutor=%s", req.TutorID)
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	slots, err := s.slotRepo.List(ctx, domain.SlotFilter{
		TutorID:       req.TutorID,
		From:          req.From,
		To:            req.To,
		OnlyAvailable: req.OnlyAvailable,
	}, now)
	if err != nil {
		s.logger.Error("List: repository error for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d slots for tutor=%s", len(slots), req.TutorID)
	return models.FromDomainSlotList(slots, now), nil
}

// GetByID получает слот по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.SlotResponse, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("GetByID: slot id=%d not found", id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("GetByID: repository error for slot id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainSlot(slot, s.timeProvider.Now()), nil
}

// Create создает слот вручную
// Пересечения с другими слотами не запрещены, но возвращаются как предупреждения
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.CreateSlotResponse, error) {
	s.logger.Info("Create: tutor=%s, startsAt=%s", req.TutorID, req.StartsAt.Format(time.RFC3339))

	// Проверяем права доступа
	if !domain.CanManageSlot(req.Principal, req.TutorID) {
		s.logger.Warn("Create: access denied for user=%s to tutor=%s", req.Principal.UserID, req.TutorID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	if !req.StartsAt.After(now) {
		s.logger.Warn("Create: slot for tutor=%s starts in the past", req.TutorID)
		return nil, ErrSlotInPast
	}

	// Длительность и цена по профилю тьютора
	minutes, price, err := s.tutorDefaults(ctx, req)
	if err != nil {
		return nil, err
	}

	endsAt := req.StartsAt.Add(time.Duration(minutes) * time.Minute)
	if req.EndsAt != nil {
		endsAt = *req.EndsAt
	}
	if err := validateSlotTimes(req.StartsAt, endsAt); err != nil {
		s.logger.Warn("Create: invalid slot times for tutor=%s: %v", req.TutorID, err)
		return nil, err
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		price = *req.PriceCents
	}

	slot := &domain.Slot{
		TutorID:    req.TutorID,
		StartsAt:   req.StartsAt,
		EndsAt:     ptr.Ptr(endsAt),
		PriceCents: price,
		Status:     domain.SlotStatusAvailable,
		Source:     domain.SlotSourceManual,
	}

	// Ищем пересечения (предупреждения не блокируют создание)
	warnings, err := s.overlapWarnings(ctx, slot, now)
	if err != nil {
		return nil, err
	}

	created, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotAlreadyExists) {
			s.logger.Warn("Create: tutor=%s already has a slot at %s", req.TutorID, req.StartsAt.Format(time.RFC3339))
			return nil, ErrSlotAlreadyExists
		}
		s.logger.Error("Create: repository error for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.notifier.Notify(ctx, notifier.SlotEvent{
		Type:    notifier.EventSlotCreated,
		SlotID:  created.ID,
		TutorID: created.TutorID,
		Status:  string(domain.SlotStatusAvailable),
		At:      now,
	})

	s.logger.Info("Create: successfully created slot id=%d for tutor=%s with %d warnings", created.ID, req.TutorID, len(warnings))
	return &models.CreateSlotResponse{
		Slot:     *models.FromDomainSlot(created, now),
		Warnings: warnings,
	}, nil
}

// Delete удаляет свободный будущий слот
func (s *Service) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	s.logger.Info("Delete: slot id=%d by user=%s", id, principal.UserID)

	now := s.timeProvider.Now()
	var tutorSlot *domain.Slot

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.getOwned(txCtx, principal, id, "Delete")
		if err != nil {
			return err
		}

		if !slot.IsDeletable(now) {
			s.logger.Warn("Delete: slot id=%d is %s, can't delete", id, slot.EffectiveStatus(now))
			return ErrSlotNotDeletable
		}

		// Истекший hold удаляется вместе со слотом (ON DELETE CASCADE)
		if err := s.slotRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
				return ErrSlotNotDeletable
			}
			s.logger.Error("Delete: repository error for slot id=%d: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}

		tutorSlot = slot
		return nil
	})
	if err != nil {
		return s.mapTxError("Delete", id, err)
	}

	s.notifier.Notify(ctx, notifier.SlotEvent{
		Type:    notifier.EventSlotDeleted,
		SlotID:  id,
		TutorID: tutorSlot.TutorID,
		At:      now,
	})

	s.logger.Info("Delete: successfully deleted slot id=%d", id)
	return nil
}

// Cancel отменяет свободный или удержанный слот
// Hold студента снимается, повторная отмена не является ошибкой
func (s *Service) Cancel(ctx context.Context, principal domain.Principal, id int64) (*models.SlotResponse, error) {
	s.logger.Info("Cancel: slot id=%d by user=%s", id, principal.UserID)

	now := s.timeProvider.Now()
	var (
		result  *domain.Slot
		changed bool
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.getOwned(txCtx, principal, id, "Cancel")
		if err != nil {
			return err
		}
		result = slot

		switch slot.Status {
		case domain.SlotStatusCanceled:
			return nil
		case domain.SlotStatusBooked:
			s.logger.Warn("Cancel: slot id=%d is booked", id)
			return ErrCannotCancel
		}

		if slot.Hold != nil {
			if _, err := s.holdRepo.DeleteBySlotID(txCtx, id); err != nil {
				s.logger.Error("Cancel: failed to delete hold of slot id=%d: %v", id, err)
				return fmt.Errorf("%w: Cancel - delete hold: %w", ErrInternal, err)
			}
		}

		if err := s.slotRepo.Cancel(txCtx, id); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
				return ErrCannotCancel
			}
			s.logger.Error("Cancel: repository error for slot id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		slot.Status = domain.SlotStatusCanceled
		slot.Hold = nil
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.mapTxError("Cancel", id, err)
	}

	if changed {
		s.notifier.Notify(ctx, notifier.SlotEvent{
			Type:    notifier.EventSlotCanceled,
			SlotID:  id,
			TutorID: result.TutorID,
			Status:  string(domain.SlotStatusCanceled),
			At:      now,
		})
	}

	s.logger.Info("Cancel: slot id=%d is canceled", id)
	return models.FromDomainSlot(result, now), nil
}

// PurgeExpiredHolds удаляет истекшие hold
// Корректность от этого не зависит, статус вычисляется при чтении
func (s *Service) PurgeExpiredHolds(ctx context.Context) (int64, error) {
	purged, err := s.holdRepo.DeleteExpired(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("PurgeExpiredHolds: repository error: %v", err)
		return 0, fmt.Errorf("%w: PurgeExpiredHolds - repository error: %w", ErrInternal, err)
	}

	if purged > 0 {
		s.logger.Info("PurgeExpiredHolds: purged %d expired holds", purged)
	}
	return purged, nil
}

// Вспомогательные методы

// getOwned получает слот и проверяет, что им управляет вызывающий тьютор
func (s *Service) getOwned(ctx context.Context, principal domain.Principal, id int64, op string) (*domain.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found", op, id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	if !domain.CanManageSlot(principal, slot.TutorID) {
		s.logger.Warn("%s: access denied for user=%s to slot id=%d", op, principal.UserID, id)
		return nil, ErrAccessDenied
	}

	return slot, nil
}

// mapTxError пропускает ошибки сервиса, остальное считает внутренней ошибкой
func (s *Service) mapTxError(op string, id int64, err error) error {
	if errors.Is(err, txmanager.ErrSerialization) {
		s.logger.Warn("%s: slot id=%d lost a concurrent update: %v", op, id, err)
		return ErrConcurrentUpdate
	}
	for _, known := range []error{ErrSlotNotFound, ErrAccessDenied, ErrSlotNotDeletable, ErrCannotCancel, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	s.logger.Error("%s: transaction failed for slot id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - transaction failed: %w", ErrInternal, op, err)
}

// tutorDefaults возвращает длительность урока и цену по профилю тьютора
func (s *Service) tutorDefaults(ctx context.Context, req *models.CreateSlotRequest) (int, int, error) {
	minutes, price := s.defaults.LessonMinutes, s.defaults.PriceCents

	profile, err := s.profileRepo.GetTutorProfile(ctx, req.TutorID)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileNotFound) {
			return minutes, price, nil
		}
		s.logger.Error("Create: failed to get profile of tutor=%s: %v", req.TutorID, err)
		return 0, 0, fmt.Errorf("%w: Create - get tutor profile: %w", ErrInternal, err)
	}

	if profile.LessonMinutes > 0 {
		minutes = profile.LessonMinutes
	}
	if profile.HourlyRateCents > 0 {
		price = profile.LessonPriceCents()
	}
	return minutes, price, nil
}

// overlapWarnings ищет пересекающиеся неотмененные слоты тьютора
func (s *Service) overlapWarnings(ctx context.Context, slot *domain.Slot, now time.Time) ([]string, error) {
	lessonDuration := time.Duration(s.defaults.LessonMinutes) * time.Minute
	from := slot.StartsAt.Add(-domain.MaxSlotDurationMinutes * time.Minute)
	to := slot.EndTime(lessonDuration)

	nearby, err := s.slotRepo.List(ctx, domain.SlotFilter{TutorID: slot.TutorID, From: &from, To: &to}, now)
	if err != nil {
		s.logger.Error("Create: failed to list slots of tutor=%s: %v", slot.TutorID, err)
		return nil, fmt.Errorf("%w: Create - list slots: %w", ErrInternal, err)
	}

	warnings := make([]string, 0)
	for _, other := range nearby {
		if other.Status == domain.SlotStatusCanceled {
			continue
		}
		if slot.Overlaps(other, lessonDuration) {
			warnings = append(warnings, fmt.Sprintf("overlaps slot %d at %s", other.ID, other.StartsAt.UTC().Format(time.RFC3339)))
		}
	}
	return warnings, nil
}

// validateSlotTimes проверяет границы слота
func validateSlotTimes(startsAt, endsAt time.Time) error {
	if !endsAt.After(startsAt) {
		return fmt.Errorf("%w: endsAt must be after startsAt", ErrInvalidInput)
	}
	if endsAt.Sub(startsAt) > domain.MaxSlotDurationMinutes*time.Minute {
		return fmt.Errorf("%w: slot can't be longer than %d minutes", ErrInvalidInput, domain.MaxSlotDurationMinutes)
	}
	return nil
}
