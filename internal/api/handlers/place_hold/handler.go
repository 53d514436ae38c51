package place_hold

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	placeHold "github.com/m04kA/SMC-LessonService/internal/usecase/place_hold"
)

const (
	msgInvalidSlotID    = "invalid slot id"
	msgUnauthorized     = "authentication required"
	msgForbidden        = "only students can hold slots"
	msgSlotNotFound     = "slot not found"
	msgSlotNotAvailable = "this slot was just taken. Please pick another one."
	msgSlotInPast       = "this slot has already started"
)

type Handler struct {
	useCase PlaceHoldUseCase
	logger  Logger
}

func NewHandler(useCase PlaceHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/hold
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/hold - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/hold - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &placeHold.Request{
		SlotID:    slotID,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, placeHold.ErrForbidden):
			h.logger.Warn("POST /slots/{id}/hold - Forbidden: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, placeHold.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/hold - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, placeHold.ErrSlotNotAvailable):
			h.logger.Warn("POST /slots/{id}/hold - Slot not available: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, placeHold.ErrSlotInPast):
			h.logger.Warn("POST /slots/{id}/hold - Slot in past: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSlotInPast)

		case errors.Is(err, placeHold.ErrInvalidInput):
			h.logger.Warn("POST /slots/{id}/hold - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		default:
			h.logger.Error("POST /slots/{id}/hold - Failed to hold slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/hold - Slot held: slot_id=%d, user_id=%s, expires_at=%s",
		slotID, principal.UserID, result.HoldExpiresAt.Format(time.RFC3339))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result, time.Now()))
}
