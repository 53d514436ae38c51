package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusBooked, BookingStatusCompleted, BookingStatusCanceled:
		return true
	}
	return false
}

// Booking represents a confirmed lesson
type Booking struct {
	ID         int64
	TutorID    uuid.UUID
	StudentID  uuid.UUID
	SlotID     *int64 // NULL after the slot row was removed
	StartsAt   time.Time
	EndsAt     *time.Time
	PriceCents int
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCanceled
}

// IsParticipant returns true if the user is the tutor or the student of the booking
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.TutorID == userID || b.StudentID == userID
}

// UserBookingsFilter фильтр бронирований пользователя
type UserBookingsFilter struct {
	Principal Principal
	Status    *BookingStatus
}
