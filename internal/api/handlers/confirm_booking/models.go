package confirm_booking

import (
	"time"

	bookingModels "github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
	slotModels "github.com/m04kA/SMC-LessonService/internal/service/slots/models"
	confirmBooking "github.com/m04kA/SMC-LessonService/internal/usecase/confirm_booking"
)

// ConfirmResponse HTTP response model
type ConfirmResponse struct {
	Booking *bookingModels.BookingResponse `json:"booking"`
	Slot    *slotModels.SlotResponse       `json:"slot"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmBooking.Response, now time.Time) *ConfirmResponse {
	return &ConfirmResponse{
		Booking: bookingModels.FromDomainBooking(resp.Booking),
		Slot:    slotModels.FromDomainSlot(resp.Slot, now),
	}
}
