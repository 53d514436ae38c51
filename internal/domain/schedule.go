package domain

import (
	"time"

	"github.com/google/uuid"
)

// CellStatus is the display status of an hour in the weekly schedule
type CellStatus string

const (
	CellStatusAvailable   CellStatus = "available"
	CellStatusHeld        CellStatus = "held"
	CellStatusBooked      CellStatus = "booked"
	CellStatusUnavailable CellStatus = "unavailable"
)

// UnavailableReason explains an unavailable cell
type UnavailableReason string

const (
	ReasonOutOfPattern UnavailableReason = "out_of_pattern"
	ReasonTimeOff      UnavailableReason = "time_off"
	ReasonPast         UnavailableReason = "past"
	// ReasonNotPublished marks a pattern hour that has no slot yet.
	// Without a pattern every hour is out_of_pattern.
	ReasonNotPublished UnavailableReason = "not_published"
	ReasonCanceled     UnavailableReason = "canceled"
)

// ScheduleCell is one local hour of one day
type ScheduleCell struct {
	StartsAt time.Time
	Hour     int
	Status   CellStatus
	Reason   *UnavailableReason
	SlotID   *int64
	Student  *Profile // only for booked cells
}

// ScheduleDay is one local date of the week
type ScheduleDay struct {
	Date    time.Time // local midnight
	Weekday time.Weekday
	Cells   []ScheduleCell
}

// WeekSchedule is the weekly status projection of a tutor
type WeekSchedule struct {
	TutorID   uuid.UUID
	Timezone  string
	WeekStart time.Time
	Days      []ScheduleDay
	Warnings  []string
}
