package notifier

import (
	"time"

	"github.com/google/uuid"
)

// EventType тип изменения слота
type EventType string

const (
	EventHoldPlaced   EventType = "hold_placed"
	EventHoldReleased EventType = "hold_released"
	EventSlotBooked   EventType = "slot_booked"
	EventSlotCreated  EventType = "slot_created"
	EventSlotDeleted  EventType = "slot_deleted"
	EventSlotCanceled EventType = "slot_canceled"
	EventSlotsSynced  EventType = "slots_synced"
)

// SlotEvent событие для live-обновления расписания тьютора
type SlotEvent struct {
	Type    EventType `json:"type"`
	SlotID  int64     `json:"slotId,omitempty"`
	TutorID uuid.UUID `json:"tutorId"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}
