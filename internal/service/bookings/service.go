package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
)

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo    BookingRepository
	timeProvider   TimeProvider
	logger         Logger
	lessonDuration time.Duration
}

// NewService создает новый экземпляр сервиса бронирований
// lessonDuration - длительность урока для бронирований без ends_at
func NewService(
	bookingRepo BookingRepository,
	logger Logger,
	lessonDuration time.Duration,
) *Service {
	if lessonDuration <= 0 {
		lessonDuration = domain.DefaultLessonMinutes * time.Minute
	}
	return &Service{
		bookingRepo:    bookingRepo,
		timeProvider:   realTimeProvider{},
		logger:         logger,
		lessonDuration: lessonDuration,
	}
}

// GetByID получает бронирование по ID
// Видеть бронирование могут только его студент и тьютор
func (s *Service) GetByID(ctx context.Context, id int64, principal domain.Principal) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%s", id, principal.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	// Проверяем права доступа
	if !booking.IsParticipant(principal.UserID) {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%d", principal.UserID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования вызывающего пользователя, новые сначала
// Студент видит свои уроки, тьютор - уроки у себя. Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%s, role=%s", req.Principal.UserID, req.Principal.Role)

	// Конвертируем статус из строки в domain.BookingStatus
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%s", *req.Status, req.Principal.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByParticipant(ctx, domain.UserBookingsFilter{
		Principal: req.Principal,
		Status:    domainStatus,
	})
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%s: %v", req.Principal.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%s", len(bookings), req.Principal.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// CompletePast переводит прошедшие уроки в completed
// Используется фоновым планировщиком
func (s *Service) CompletePast(ctx context.Context) (int64, error) {
	completed, err := s.bookingRepo.CompletePast(ctx, s.timeProvider.Now(), s.lessonDuration)
	if err != nil {
		s.logger.Error("CompletePast: repository error: %v", err)
		return 0, fmt.Errorf("%w: CompletePast - repository error: %w", ErrInternal, err)
	}

	if completed > 0 {
		s.logger.Info("CompletePast: completed %d bookings", completed)
	}
	return completed, nil
}
