package confirm_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	confirmBooking "github.com/m04kA/SMC-LessonService/internal/usecase/confirm_booking"
)

const (
	msgInvalidSlotID = "invalid slot id"
	msgUnauthorized  = "authentication required"
	msgForbidden     = "only students can book slots"
	msgSlotNotFound  = "slot not found"
	msgSlotInPast    = "this slot has already started"
)

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/book
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/book - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/book - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmBooking.Request{
		SlotID:    slotID,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrForbidden):
			h.logger.Warn("POST /slots/{id}/book - Forbidden: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, confirmBooking.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/book - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, confirmBooking.ErrHoldExpired):
			h.logger.Warn("POST /slots/{id}/book - Hold expired: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondError(w, http.StatusGone, domain.MsgHoldExpired)

		case errors.Is(err, confirmBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /slots/{id}/book - Slot not available: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondConflict(w, domain.MsgBookingFailed)

		case errors.Is(err, confirmBooking.ErrSlotInPast):
			h.logger.Warn("POST /slots/{id}/book - Slot in past: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSlotInPast)

		case errors.Is(err, confirmBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		default:
			h.logger.Error("POST /slots/{id}/book - Failed to book slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/book - Booking created: booking_id=%d, slot_id=%d, user_id=%s",
		result.Booking.ID, slotID, principal.UserID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, time.Now()))
}
