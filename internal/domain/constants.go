package domain

import "time"

// Default configuration values
const (
	DefaultHoldTTL       = 15 * time.Minute
	DefaultLessonMinutes = 60
	DefaultHorizonWeeks  = 4
)

// Business validation constants
const (
	HoursPerDay            = 24
	DaysPerWeek            = 7
	MaxHorizonWeeks        = 52
	MaxTimeOffReasonLen    = 500
	MaxSlotDurationMinutes = 480 // 8 hours
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// RoomIDPrefix prefix of the video room identifier assigned at booking
const RoomIDPrefix = "lesson-"

// User-facing messages
const (
	MsgHoldExpired        = "Hold expired. Please pick the slot again."
	MsgBookingFailed      = "Booking failed. Please try again."
	MsgSlotsRefreshFailed = "Availability saved, but we couldn't refresh booking slots. Please try again."
)
