package place_hold

import (
	"time"

	slotModels "github.com/m04kA/SMC-LessonService/internal/service/slots/models"
	placeHold "github.com/m04kA/SMC-LessonService/internal/usecase/place_hold"
)

// HoldResponse HTTP response model
type HoldResponse struct {
	Slot          *slotModels.SlotResponse `json:"slot"`
	HoldExpiresAt time.Time                `json:"holdExpiresAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *placeHold.Response, now time.Time) *HoldResponse {
	return &HoldResponse{
		Slot:          slotModels.FromDomainSlot(resp.Slot, now),
		HoldExpiresAt: resp.HoldExpiresAt,
	}
}
