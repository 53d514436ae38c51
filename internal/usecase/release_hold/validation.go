package release_hold

import (
	"fmt"

	"github.com/google/uuid"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slot_id must be positive", ErrInvalidInput)
	}
	if req.Principal.UserID == uuid.Nil {
		return fmt.Errorf("%w: caller is required", ErrInvalidInput)
	}
	return nil
}
