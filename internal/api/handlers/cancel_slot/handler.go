package cancel_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/service/slots"
)

const (
	msgInvalidSlotID = "invalid slot id"
	msgUnauthorized  = "authentication required"
	msgNotFound      = "slot not found"
	msgForbidden     = "you can only cancel your own slots"
	msgCannotCancel  = "booked slots cannot be canceled"
	msgConcurrent    = "slot was changed, please try again"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/slots/{slotId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/cancel - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("PATCH /slots/{id}/cancel - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	slot, err := h.service.Cancel(r.Context(), principal, slotID)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /slots/{id}/cancel - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("PATCH /slots/{id}/cancel - Access denied: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, slots.ErrCannotCancel):
			h.logger.Warn("PATCH /slots/{id}/cancel - Cannot cancel: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, slots.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /slots/{id}/cancel - Concurrent update: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgConcurrent)

		default:
			h.logger.Error("PATCH /slots/{id}/cancel - Failed to cancel slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slots/{id}/cancel - Slot canceled: slot_id=%d, user_id=%s", slotID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, slot)
}
