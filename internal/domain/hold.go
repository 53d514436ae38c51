package domain

import (
	"time"

	"github.com/google/uuid"
)

// Hold is a temporary single-claimant reservation of a slot
type Hold struct {
	ID        uuid.UUID
	SlotID    int64
	StudentID uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsLive returns true if the hold has not expired at now
func (h *Hold) IsLive(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

// IsOwnedBy returns true if the hold belongs to the student
func (h *Hold) IsOwnedBy(studentID uuid.UUID) bool {
	return h.StudentID == studentID
}
