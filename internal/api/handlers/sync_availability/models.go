package sync_availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	syncAvailability "github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
)

// SyncRequest HTTP request model, тело необязательно
type SyncRequest struct {
	From  *time.Time `json:"from,omitempty"`
	Weeks int        `json:"weeks,omitempty" validate:"gte=0"`
}

// SyncResponse HTTP response model
type SyncResponse struct {
	CreatedCount int `json:"createdCount"`
	RemovedCount int `json:"removedCount"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SyncRequest) ToUseCaseRequest(tutorID uuid.UUID, principal domain.Principal) *syncAvailability.Request {
	return &syncAvailability.Request{
		TutorID:   tutorID,
		Principal: &principal,
		From:      r.From,
		Weeks:     r.Weeks,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *syncAvailability.Response) *SyncResponse {
	return &SyncResponse{
		CreatedCount: resp.CreatedCount,
		RemovedCount: resp.RemovedCount,
	}
}
