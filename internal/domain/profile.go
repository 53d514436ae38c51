package domain

import "github.com/google/uuid"

// Profile is the public identity of a user
type Profile struct {
	ID          uuid.UUID
	Role        Role
	DisplayName string
	AvatarURL   *string
}

// TutorProfile holds a tutor's lesson defaults
type TutorProfile struct {
	TutorID         uuid.UUID
	HourlyRateCents int
	LessonMinutes   int
}

// LessonPriceCents returns the hourly rate prorated to the lesson length
func (t *TutorProfile) LessonPriceCents() int {
	if t.LessonMinutes <= 0 {
		return t.HourlyRateCents
	}
	return t.HourlyRateCents * t.LessonMinutes / 60
}
