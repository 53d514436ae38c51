package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// Request модели

// ListSlotsRequest запрос на список слотов тьютора
type ListSlotsRequest struct {
	TutorID       uuid.UUID
	From          *time.Time // Начало периода (опционально)
	To            *time.Time // Конец периода (опционально)
	OnlyAvailable bool       // Только свободные будущие слоты
}

// CreateSlotRequest запрос на создание слота вручную
type CreateSlotRequest struct {
	Principal  domain.Principal `json:"-"`
	TutorID    uuid.UUID        `json:"-"`
	StartsAt   time.Time        `json:"startsAt" validate:"required"`
	EndsAt     *time.Time       `json:"endsAt,omitempty"`
	PriceCents *int             `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
}

// Response модели

// SlotResponse ответ с данными слота
// Status - эффективный статус на момент ответа
type SlotResponse struct {
	ID            int64      `json:"id"`
	TutorID       string     `json:"tutorId"`
	StartsAt      time.Time  `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	PriceCents    int        `json:"priceCents"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	RoomID        *string    `json:"roomId,omitempty"`
	HoldExpiresAt *time.Time `json:"holdExpiresAt,omitempty"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// CreateSlotResponse ответ с созданным слотом и предупреждениями о пересечениях
type CreateSlotResponse struct {
	Slot     SlotResponse `json:"slot"`
	Warnings []string     `json:"warnings"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot, now time.Time) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:            s.ID,
		TutorID:       s.TutorID.String(),
		StartsAt:      s.StartsAt,
		EndsAt:        s.EndsAt,
		PriceCents:    s.PriceCents,
		Status:        string(s.EffectiveStatus(now)),
		Source:        string(s.Source),
		RoomID:        s.RoomID,
		HoldExpiresAt: s.HoldExpiresAt(now),
	}
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []*domain.Slot, now time.Time) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for _, slot := range slots {
		if slotResp := FromDomainSlot(slot, now); slotResp != nil {
			resp.Slots = append(resp.Slots, *slotResp)
		}
	}

	return resp
}
