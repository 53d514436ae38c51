package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// weekdayNames ключи часов в JSON
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Request модели

// SaveAvailabilityRequest запрос на сохранение шаблона доступности
// Ключи Hours - названия дней недели ("monday") или номера 0..6, 0 - воскресенье
type SaveAvailabilityRequest struct {
	Principal domain.Principal `json:"-"`
	TutorID   uuid.UUID        `json:"-"`
	Timezone  string           `json:"timezone" validate:"required"`
	Hours     map[string][]int `json:"hours" validate:"required"`
}

// AddTimeOffRequest запрос на добавление отпуска
type AddTimeOffRequest struct {
	Principal domain.Principal `json:"-"`
	TutorID   uuid.UUID        `json:"-"`
	StartsAt  time.Time        `json:"startsAt" validate:"required"`
	EndsAt    time.Time        `json:"endsAt" validate:"required"`
	Reason    *string          `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ListTimeOffRequest запрос на список отпусков
type ListTimeOffRequest struct {
	TutorID uuid.UUID
	From    *time.Time // По умолчанию текущее время
	To      *time.Time // По умолчанию горизонт в один год
}

// Response модели

// AvailabilityResponse шаблон доступности тьютора
type AvailabilityResponse struct {
	TutorID   string           `json:"tutorId"`
	Timezone  string           `json:"timezone"`
	Hours     map[string][]int `json:"hours"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SyncResult итог материализации слотов
type SyncResult struct {
	CreatedCount int `json:"createdCount"`
	RemovedCount int `json:"removedCount"`
}

// SaveAvailabilityResponse ответ на сохранение шаблона
// Warning заполняется, когда шаблон сохранен, а слоты обновить не удалось
type SaveAvailabilityResponse struct {
	Availability AvailabilityResponse `json:"availability"`
	Sync         *SyncResult          `json:"sync,omitempty"`
	Warning      string               `json:"warning,omitempty"`
}

// TimeOffResponse окно отпуска
type TimeOffResponse struct {
	ID        int64     `json:"id"`
	TutorID   string    `json:"tutorId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddTimeOffResponse ответ на добавление отпуска
type AddTimeOffResponse struct {
	TimeOff TimeOffResponse `json:"timeOff"`
	Sync    *SyncResult     `json:"sync,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// TimeOffListResponse список отпусков
type TimeOffListResponse struct {
	TimeOff []TimeOffResponse `json:"timeOff"`
}

// Методы конвертации

// ToDomainPattern конвертирует запрос в domain модель
func (r *SaveAvailabilityRequest) ToDomainPattern() (*domain.AvailabilityPattern, error) {
	hours := make(map[time.Weekday][]int, len(r.Hours))
	for key, values := range r.Hours {
		weekday, err := ParseWeekday(key)
		if err != nil {
			return nil, err
		}
		hours[weekday] = append(hours[weekday], values...)
	}

	return &domain.AvailabilityPattern{
		TutorID:        r.TutorID,
		Timezone:       r.Timezone,
		HoursByWeekday: hours,
	}, nil
}

// ToDomainTimeOff конвертирует запрос в domain модель
func (r *AddTimeOffRequest) ToDomainTimeOff() *domain.TimeOff {
	return &domain.TimeOff{
		TutorID:  r.TutorID,
		StartsAt: r.StartsAt,
		EndsAt:   r.EndsAt,
		Reason:   r.Reason,
	}
}

// ParseWeekday принимает название дня недели или его номер
func ParseWeekday(key string) (time.Weekday, error) {
	if weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(key))]; ok {
		return weekday, nil
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < int(time.Sunday) || n > int(time.Saturday) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidWeekday, key)
	}
	return time.Weekday(n), nil
}

// FromDomainPattern конвертирует domain модель в DTO
func FromDomainPattern(p *domain.AvailabilityPattern) *AvailabilityResponse {
	if p == nil {
		return nil
	}

	hours := make(map[string][]int, len(p.HoursByWeekday))
	for weekday, values := range p.HoursByWeekday {
		hours[strings.ToLower(weekday.String())] = values
	}

	return &AvailabilityResponse{
		TutorID:   p.TutorID.String(),
		Timezone:  p.Timezone,
		Hours:     hours,
		UpdatedAt: p.UpdatedAt,
	}
}

// FromDomainTimeOff конвертирует domain модель в DTO
func FromDomainTimeOff(t *domain.TimeOff) *TimeOffResponse {
	if t == nil {
		return nil
	}

	return &TimeOffResponse{
		ID:        t.ID,
		TutorID:   t.TutorID.String(),
		StartsAt:  t.StartsAt,
		EndsAt:    t.EndsAt,
		Reason:    t.Reason,
		CreatedAt: t.CreatedAt,
	}
}

// FromDomainTimeOffList конвертирует список domain моделей в DTO
func FromDomainTimeOffList(windows []domain.TimeOff) *TimeOffListResponse {
	resp := &TimeOffListResponse{
		TimeOff: make([]TimeOffResponse, 0, len(windows)),
	}

	for i := range windows {
		resp.TimeOff = append(resp.TimeOff, *FromDomainTimeOff(&windows[i]))
	}

	return resp
}
