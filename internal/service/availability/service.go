package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-LessonService/internal/service/availability/models"
	"github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
)

// defaultTimeOffWindow окно списка отпусков по умолчанию
const defaultTimeOffWindow = domain.MaxHorizonWeeks * 7 * 24 * time.Hour

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Service сервис шаблонов доступности и отпусков тьютора
type Service struct {
	availabilityRepo AvailabilityRepository
	syncer           Syncer
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	availabilityRepo AvailabilityRepository,
	syncer Syncer,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		syncer:           syncer,
		timeProvider:     realTimeProvider{},
		logger:           logger,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (s *Service) SetTimeProvider(tp TimeProvider) {
	s.timeProvider = tp
}

// Get получает шаблон доступности тьютора
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context, tutorID uuid.UUID) (*models.AvailabilityResponse, error) {
	pattern, err := s.availabilityRepo.GetPattern(ctx, tutorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrPatternNotFound) {
			s.logger.Warn("Get: pattern of tutor=%s not found", tutorID)
			return nil, ErrPatternNotFound
		}
		s.logger.Error("Get: repository error for tutor=%s: %v", tutorID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainPattern(pattern), nil
}

// Save сохраняет шаблон доступности и материализует слоты
// Ошибка материализации не откатывает шаблон, а возвращается предупреждением
func (s *Service) Save(ctx context.Context, req *models.SaveAvailabilityRequest) (*models.SaveAvailabilityResponse, error) {
	s.logger.Info("Save: tutor=%s, timezone=%s, weekdays=%d", req.TutorID, req.Timezone, len(req.Hours))

	// 1. Проверяем права доступа
	if !domain.CanManageSlot(req.Principal, req.TutorID) {
		s.logger.Warn("Save: access denied for user=%s to tutor=%s", req.Principal.UserID, req.TutorID)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем шаблон
	pattern, err := req.ToDomainPattern()
	if err != nil {
		s.logger.Warn("Save: invalid hours for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := pattern.Validate(); err != nil {
		s.logger.Warn("Save: invalid pattern for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	pattern.Normalize()

	// 3. Сохраняем шаблон
	saved, err := s.availabilityRepo.UpsertPattern(ctx, pattern)
	if err != nil {
		s.logger.Error("Save: repository error for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: Save - repository error: %w", ErrInternal, err)
	}

	resp := &models.SaveAvailabilityResponse{
		Availability: *models.FromDomainPattern(saved),
	}

	// 4. Материализуем слоты
	result, err := s.sync(ctx, req.Principal, req.TutorID)
	if err != nil {
		s.logger.Error("Save: pattern of tutor=%s saved, but sync failed: %v", req.TutorID, err)
		resp.Warning = domain.MsgSlotsRefreshFailed
		return resp, nil
	}

	resp.Sync = result
	s.logger.Info("Save: tutor=%s, created=%d, removed=%d", req.TutorID, result.CreatedCount, result.RemovedCount)
	return resp, nil
}

// AddTimeOff добавляет окно отпуска и убирает попавшие в него свободные слоты
func (s *Service) AddTimeOff(ctx context.Context, req *models.AddTimeOffRequest) (*models.AddTimeOffResponse, error) {
	s.logger.Info("AddTimeOff: tutor=%s, from=%s, to=%s",
		req.TutorID, req.StartsAt.Format(time.RFC3339), req.EndsAt.Format(time.RFC3339))

	if !domain.CanManageSlot(req.Principal, req.TutorID) {
		s.logger.Warn("AddTimeOff: access denied for user=%s to tutor=%s", req.Principal.UserID, req.TutorID)
		return nil, ErrAccessDenied
	}

	timeOff := req.ToDomainTimeOff()
	if err := timeOff.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if timeOff.Reason != nil && len(*timeOff.Reason) > domain.MaxTimeOffReasonLen {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxTimeOffReasonLen)
	}

	created, err := s.availabilityRepo.CreateTimeOff(ctx, timeOff)
	if err != nil {
		s.logger.Error("AddTimeOff: repository error for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: AddTimeOff - repository error: %w", ErrInternal, err)
	}

	resp := &models.AddTimeOffResponse{
		TimeOff: *models.FromDomainTimeOff(created),
	}

	// Без шаблона слоты не материализуются, синхронизировать нечего
	result, err := s.sync(ctx, req.Principal, req.TutorID)
	switch {
	case err == nil:
		resp.Sync = result
	case errors.Is(err, sync_availability.ErrPatternNotFound):
	default:
		s.logger.Error("AddTimeOff: time off of tutor=%s saved, but sync failed: %v", req.TutorID, err)
		resp.Warning = domain.MsgSlotsRefreshFailed
	}

	s.logger.Info("AddTimeOff: successfully created time off id=%d for tutor=%s", created.ID, req.TutorID)
	return resp, nil
}

// ListTimeOff получает окна отпуска тьютора за период
func (s *Service) ListTimeOff(ctx context.Context, req *models.ListTimeOffRequest) (*models.TimeOffListResponse, error) {
	from := s.timeProvider.Now()
	if req.From != nil {
		from = *req.From
	}
	to := from.Add(defaultTimeOffWindow)
	if req.To != nil {
		to = *req.To
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrInvalidInput)
	}

	windows, err := s.availabilityRepo.ListTimeOff(ctx, req.TutorID, from, to)
	if err != nil {
		s.logger.Error("ListTimeOff: repository error for tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: ListTimeOff - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainTimeOffList(windows), nil
}

func (s *Service) sync(ctx context.Context, principal domain.Principal, tutorID uuid.UUID) (*models.SyncResult, error) {
	result, err := s.syncer.Execute(ctx, &sync_availability.Request{
		TutorID:   tutorID,
		Principal: &principal,
	})
	if err != nil {
		return nil, err
	}

	return &models.SyncResult{
		CreatedCount: result.CreatedCount,
		RemovedCount: result.RemovedCount,
	}, nil
}
