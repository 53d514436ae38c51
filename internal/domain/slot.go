package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the status of a lesson slot.
// Stored rows carry only available, booked or canceled; held is derived from a live hold.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusHeld      SlotStatus = "held"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCanceled  SlotStatus = "canceled"
)

// SlotSource tells how a slot was created
type SlotSource string

const (
	SlotSourcePattern SlotSource = "pattern"
	SlotSourceManual  SlotSource = "manual"
)

// Slot represents a bookable unit of tutor time
type Slot struct {
	ID         int64
	TutorID    uuid.UUID
	StartsAt   time.Time
	EndsAt     *time.Time
	PriceCents int
	Status     SlotStatus // stored status
	Source     SlotSource
	RoomID     *string

	// Hold is the hold row attached to the slot, possibly expired
	Hold *Hold

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStatus returns the status as observed at now
func (s *Slot) EffectiveStatus(now time.Time) SlotStatus {
	if s.Status == SlotStatusAvailable && s.Hold != nil && s.Hold.IsLive(now) {
		return SlotStatusHeld
	}
	return s.Status
}

// HeldBy returns the student holding the slot at now, nil if not held
func (s *Slot) HeldBy(now time.Time) *uuid.UUID {
	if s.EffectiveStatus(now) != SlotStatusHeld {
		return nil
	}
	id := s.Hold.StudentID
	return &id
}

// HoldExpiresAt returns the expiry of the live hold, nil if not held
func (s *Slot) HoldExpiresAt(now time.Time) *time.Time {
	if s.EffectiveStatus(now) != SlotStatusHeld {
		return nil
	}
	at := s.Hold.ExpiresAt
	return &at
}

// HasStarted returns true if the slot start is not in the future
func (s *Slot) HasStarted(now time.Time) bool {
	return !s.StartsAt.After(now)
}

// EndTime returns ends_at or starts_at plus the default lesson length
func (s *Slot) EndTime(defaultDuration time.Duration) time.Time {
	if s.EndsAt != nil {
		return *s.EndsAt
	}
	return s.StartsAt.Add(defaultDuration)
}

// Overlaps returns true if both slots share any instant
func (s *Slot) Overlaps(other *Slot, defaultDuration time.Duration) bool {
	return s.StartsAt.Before(other.EndTime(defaultDuration)) &&
		other.StartsAt.Before(s.EndTime(defaultDuration))
}

// IsDeletable returns true if the slot can be removed by its tutor
func (s *Slot) IsDeletable(now time.Time) bool {
	return s.EffectiveStatus(now) == SlotStatusAvailable && !s.HasStarted(now)
}

// SlotFilter фильтр для списка слотов тьютора
type SlotFilter struct {
	TutorID       uuid.UUID
	From          *time.Time
	To            *time.Time
	OnlyAvailable bool // только effective available и в будущем
}
