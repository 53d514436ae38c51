package sync_availability

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.TutorID == uuid.Nil {
		return fmt.Errorf("%w: tutor_id is required", ErrInvalidInput)
	}
	if req.Weeks < 0 || req.Weeks > domain.MaxHorizonWeeks {
		return fmt.Errorf("%w: weeks must be between 1 and %d", ErrInvalidInput, domain.MaxHorizonWeeks)
	}
	return nil
}
