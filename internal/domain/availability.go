package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimezone = errors.New("domain: invalid timezone")
	ErrInvalidWeekday  = errors.New("domain: weekday must be in 0..6")
	ErrInvalidHour     = errors.New("domain: hour must be in 0..23")
	ErrInvalidTimeOff  = errors.New("domain: time off must end after it starts")
)

// AvailabilityPattern is a tutor's recurring weekly availability.
// Hours are wall-clock hours in Timezone; weekday 0 is Sunday.
type AvailabilityPattern struct {
	TutorID        uuid.UUID
	Timezone       string
	HoursByWeekday map[time.Weekday][]int
	UpdatedAt      time.Time
}

// Location loads the pattern timezone
func (p *AvailabilityPattern) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, p.Timezone)
	}
	return loc, nil
}

// Validate checks timezone, weekdays and hours
func (p *AvailabilityPattern) Validate() error {
	if _, err := p.Location(); err != nil {
		return err
	}
	for weekday, hours := range p.HoursByWeekday {
		if weekday < time.Sunday || weekday > time.Saturday {
			return fmt.Errorf("%w: got %d", ErrInvalidWeekday, weekday)
		}
		for _, h := range hours {
			if h < 0 || h >= HoursPerDay {
				return fmt.Errorf("%w: got %d on weekday %d", ErrInvalidHour, h, weekday)
			}
		}
	}
	return nil
}

// Normalize sorts hours and drops duplicates and empty weekdays
func (p *AvailabilityPattern) Normalize() {
	normalized := make(map[time.Weekday][]int, len(p.HoursByWeekday))
	for weekday, hours := range p.HoursByWeekday {
		seen := make(map[int]struct{}, len(hours))
		unique := make([]int, 0, len(hours))
		for _, h := range hours {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			unique = append(unique, h)
		}
		if len(unique) == 0 {
			continue
		}
		sort.Ints(unique)
		normalized[weekday] = unique
	}
	p.HoursByWeekday = normalized
}

// HasHour returns true if the pattern publishes the hour on the weekday
func (p *AvailabilityPattern) HasHour(weekday time.Weekday, hour int) bool {
	for _, h := range p.HoursByWeekday[weekday] {
		if h == hour {
			return true
		}
	}
	return false
}

// IsEmpty returns true if no hours are published
func (p *AvailabilityPattern) IsEmpty() bool {
	for _, hours := range p.HoursByWeekday {
		if len(hours) > 0 {
			return false
		}
	}
	return true
}

// TimeOff is a window during which the tutor is unavailable regardless of the pattern
type TimeOff struct {
	ID        int64
	TutorID   uuid.UUID
	StartsAt  time.Time
	EndsAt    time.Time
	Reason    *string
	CreatedAt time.Time
}

// Validate checks the window bounds
func (t *TimeOff) Validate() error {
	if !t.EndsAt.After(t.StartsAt) {
		return ErrInvalidTimeOff
	}
	return nil
}

// Contains returns true if at is inside [StartsAt, EndsAt)
func (t *TimeOff) Contains(at time.Time) bool {
	return !at.Before(t.StartsAt) && at.Before(t.EndsAt)
}

// InTimeOff returns true if any window contains at
func InTimeOff(windows []TimeOff, at time.Time) bool {
	for i := range windows {
		if windows[i].Contains(at) {
			return true
		}
	}
	return false
}
