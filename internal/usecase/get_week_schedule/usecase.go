package get_week_schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-LessonService/internal/materializer"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

// UseCase use case для построения недельного расписания тьютора
type UseCase struct {
	availabilityRepo AvailabilityRepository
	slotRepo         SlotRepository
	bookingRepo      BookingRepository
	profileRepo      ProfileRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availabilityRepo AvailabilityRepository,
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	profileRepo ProfileRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		availabilityRepo: availabilityRepo,
		slotRepo:         slotRepo,
		bookingRepo:      bookingRepo,
		profileRepo:      profileRepo,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// SetTimeProvider подменяет источник текущего времени
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute строит сетку 7 дней x 24 часа начиная с понедельника недели в зоне тьютора
// Ошибки получения бронирований и профилей не фатальны: сетка возвращается без студентов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetWeekSchedule: validation failed: %v", err)
		return nil, err
	}

	if !domain.CanManageSlot(req.Principal, req.TutorID) {
		uc.logger.Warn("GetWeekSchedule: user=%s can't view schedule of tutor=%s", req.Principal.UserID, req.TutorID)
		return nil, ErrForbidden
	}

	now := uc.timeProvider.Now()

	// 2. Шаблон доступности (может отсутствовать)
	pattern, err := uc.availabilityRepo.GetPattern(ctx, req.TutorID)
	if err != nil && !errors.Is(err, availabilityRepo.ErrPatternNotFound) {
		uc.logger.Error("GetWeekSchedule: failed to get pattern of tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to get pattern: %w", ErrInternal, err)
	}

	timezone := DefaultTimezone
	if pattern != nil {
		timezone = pattern.Timezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		uc.logger.Error("GetWeekSchedule: tutor=%s has invalid timezone %q: %v", req.TutorID, timezone, err)
		return nil, fmt.Errorf("%w: invalid timezone: %w", ErrInternal, err)
	}

	// 3. Границы недели
	monday := weekStart(req.WeekOf, now, loc)
	nextMonday := monday.AddDate(0, 0, domain.DaysPerWeek)
	from := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
	to := time.Date(nextMonday.Year(), nextMonday.Month(), nextMonday.Day(), 0, 0, 0, 0, loc)

	uc.logger.Info("GetWeekSchedule: tutor=%s, week=%s, tz=%s", req.TutorID, monday.Format(domain.DateFormat), timezone)

	// 4. Слоты и отпуска недели
	slots, err := uc.slotRepo.List(ctx, domain.SlotFilter{TutorID: req.TutorID, From: &from, To: &to}, now)
	if err != nil {
		uc.logger.Error("GetWeekSchedule: failed to list slots of tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}

	timeOff, err := uc.availabilityRepo.ListTimeOff(ctx, req.TutorID, from, to)
	if err != nil {
		uc.logger.Error("GetWeekSchedule: failed to list time off of tutor=%s: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to list time off: %w", ErrInternal, err)
	}

	schedule := &domain.WeekSchedule{
		TutorID:   req.TutorID,
		Timezone:  timezone,
		WeekStart: from,
		Days:      make([]domain.ScheduleDay, 0, domain.DaysPerWeek),
		Warnings:  make([]string, 0),
	}

	// 5. Студенты забронированных слотов (не фатально)
	students := uc.loadStudents(ctx, slots, now, schedule)

	// 6. Строим сетку
	byHour := indexSlots(slots, loc)
	for i := 0; i < domain.DaysPerWeek; i++ {
		date := monday.AddDate(0, 0, i)
		day := domain.ScheduleDay{
			Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc),
			Weekday: date.Weekday(),
			Cells:   make([]domain.ScheduleCell, 0, domain.HoursPerDay),
		}
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			at, ok := materializer.ResolveLocalHour(date.Year(), date.Month(), date.Day(), hour, loc)
			if !ok {
				// часа нет в этот день (переход на летнее время)
				day.Cells = append(day.Cells, domain.ScheduleCell{
					StartsAt: time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, loc),
					Hour:     hour,
					Status:   domain.CellStatusUnavailable,
					Reason:   ptr.Ptr(domain.ReasonOutOfPattern),
				})
				continue
			}
			slot := byHour[hourKey{date: date.Format(domain.DateFormat), hour: hour}]
			cell := buildCell(at, hour, date.Weekday(), slot, pattern, timeOff, now)
			if slot != nil && cell.Status == domain.CellStatusBooked {
				cell.Student = students[slot.ID]
			}
			day.Cells = append(day.Cells, cell)
		}
		schedule.Days = append(schedule.Days, day)
	}

	return &Response{Schedule: schedule}, nil
}

// loadStudents получает профили студентов забронированных слотов
// Ошибки записываются в предупреждения расписания
func (uc *UseCase) loadStudents(ctx context.Context, slots []*domain.Slot, now time.Time, schedule *domain.WeekSchedule) map[int64]*domain.Profile {
	result := make(map[int64]*domain.Profile)

	bookedIDs := make([]int64, 0)
	for _, slot := range slots {
		if slot.EffectiveStatus(now) == domain.SlotStatusBooked {
			bookedIDs = append(bookedIDs, slot.ID)
		}
	}
	if len(bookedIDs) == 0 {
		return result
	}

	bookings, err := uc.bookingRepo.GetActiveBySlotIDs(ctx, bookedIDs)
	if err != nil {
		uc.logger.Warn("GetWeekSchedule: failed to get bookings of tutor=%s: %v", schedule.TutorID, err)
		schedule.Warnings = append(schedule.Warnings, WarnBookingsUnavailable)
		return result
	}

	studentIDs := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		studentIDs = append(studentIDs, b.StudentID)
	}

	profiles, err := uc.profileRepo.GetByIDs(ctx, studentIDs)
	if err != nil {
		uc.logger.Warn("GetWeekSchedule: failed to get student profiles: %v", err)
		schedule.Warnings = append(schedule.Warnings, WarnProfilesUnavailable)
		return result
	}

	for slotID, b := range bookings {
		if p, ok := profiles[b.StudentID]; ok {
			result[slotID] = p
		}
	}
	return result
}

type hourKey struct {
	date string
	hour int
}

// indexSlots раскладывает слоты по локальным (дата, час)
// Отмененный слот уступает место любому другому в том же часе
func indexSlots(slots []*domain.Slot, loc *time.Location) map[hourKey]*domain.Slot {
	index := make(map[hourKey]*domain.Slot, len(slots))
	for _, slot := range slots {
		local := slot.StartsAt.In(loc)
		key := hourKey{date: local.Format(domain.DateFormat), hour: local.Hour()}
		if existing, ok := index[key]; ok && existing.Status != domain.SlotStatusCanceled {
			continue
		}
		index[key] = slot
	}
	return index
}

// buildCell вычисляет статус одной ячейки
func buildCell(
	at time.Time,
	hour int,
	weekday time.Weekday,
	slot *domain.Slot,
	pattern *domain.AvailabilityPattern,
	timeOff []domain.TimeOff,
	now time.Time,
) domain.ScheduleCell {
	cell := domain.ScheduleCell{StartsAt: at, Hour: hour}
	unavailable := func(reason domain.UnavailableReason) domain.ScheduleCell {
		cell.Status = domain.CellStatusUnavailable
		cell.Reason = ptr.Ptr(reason)
		return cell
	}

	var status domain.SlotStatus
	if slot != nil {
		cell.SlotID = ptr.Ptr(slot.ID)
		status = slot.EffectiveStatus(now)
	}

	switch {
	case slot != nil && status == domain.SlotStatusBooked:
		cell.Status = domain.CellStatusBooked
		return cell
	case !at.After(now):
		return unavailable(domain.ReasonPast)
	case slot != nil && status == domain.SlotStatusHeld:
		cell.Status = domain.CellStatusHeld
		return cell
	case domain.InTimeOff(timeOff, at):
		return unavailable(domain.ReasonTimeOff)
	case slot != nil && status == domain.SlotStatusAvailable:
		cell.Status = domain.CellStatusAvailable
		return cell
	case slot != nil && status == domain.SlotStatusCanceled:
		return unavailable(domain.ReasonCanceled)
	case pattern != nil && pattern.HasHour(weekday, hour):
		// Час есть в шаблоне, но слот ещё не материализован
		return unavailable(domain.ReasonNotPublished)
	default:
		return unavailable(domain.ReasonOutOfPattern)
	}
}

// weekStart возвращает понедельник недели (полночь UTC как календарная дата)
func weekStart(weekOf, now time.Time, loc *time.Location) time.Time {
	y, m, d := weekOf.Date()
	if weekOf.IsZero() {
		y, m, d = now.In(loc).Date()
	}
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(date.Weekday()) + 6) % domain.DaysPerWeek
	return date.AddDate(0, 0, -offset)
}
