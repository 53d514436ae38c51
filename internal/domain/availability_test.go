package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityPattern_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pattern AvailabilityPattern
		wantErr error
	}{
		{
			name:    "valid",
			pattern: AvailabilityPattern{Timezone: "Europe/London", HoursByWeekday: map[time.Weekday][]int{time.Monday: {9, 10}}},
		},
		{
			name:    "unknown timezone",
			pattern: AvailabilityPattern{Timezone: "Mars/Olympus", HoursByWeekday: map[time.Weekday][]int{}},
			wantErr: ErrInvalidTimezone,
		},
		{
			name:    "empty timezone",
			pattern: AvailabilityPattern{},
			wantErr: ErrInvalidTimezone,
		},
		{
			name:    "hour out of range",
			pattern: AvailabilityPattern{Timezone: "UTC", HoursByWeekday: map[time.Weekday][]int{time.Monday: {24}}},
			wantErr: ErrInvalidHour,
		},
		{
			name:    "weekday out of range",
			pattern: AvailabilityPattern{Timezone: "UTC", HoursByWeekday: map[time.Weekday][]int{7: {9}}},
			wantErr: ErrInvalidWeekday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pattern.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAvailabilityPattern_Normalize(t *testing.T) {
	p := AvailabilityPattern{HoursByWeekday: map[time.Weekday][]int{
		time.Monday:  {10, 9, 10},
		time.Tuesday: {},
	}}

	p.Normalize()

	assert.Equal(t, map[time.Weekday][]int{time.Monday: {9, 10}}, p.HoursByWeekday)
	assert.True(t, p.HasHour(time.Monday, 9))
	assert.False(t, p.HasHour(time.Tuesday, 9))
	assert.False(t, p.IsEmpty())
}

func TestTimeOff_Contains(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	off := TimeOff{StartsAt: start, EndsAt: start.Add(2 * time.Hour)}

	assert.True(t, off.Contains(start))
	assert.True(t, off.Contains(start.Add(time.Hour)))
	assert.False(t, off.Contains(start.Add(2*time.Hour)))
	assert.False(t, off.Contains(start.Add(-time.Minute)))
	assert.True(t, InTimeOff([]TimeOff{off}, start.Add(time.Hour)))

	bad := TimeOff{StartsAt: start, EndsAt: start}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTimeOff)
}
