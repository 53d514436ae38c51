package get_week_schedule

import (
	"fmt"

	"github.com/google/uuid"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.TutorID == uuid.Nil {
		return fmt.Errorf("%w: tutor_id is required", ErrInvalidInput)
	}
	return nil
}
