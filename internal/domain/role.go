package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the marketplace role of a user
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// ParseRole converts a raw role string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTutor:
		return RoleTutor, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// CanHold returns true if the role may hold and book slots
func CanHold(role Role) bool {
	switch role {
	case RoleStudent:
		return true
	case RoleTutor:
		return false
	}
	return false
}

// CanPublishAvailability returns true if the role may publish patterns, time off and slots
func CanPublishAvailability(role Role) bool {
	switch role {
	case RoleTutor:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// CanManageSlot returns true if the caller is the tutor owning the slots
func CanManageSlot(p Principal, tutorID uuid.UUID) bool {
	return CanPublishAvailability(p.Role) && p.UserID == tutorID
}
