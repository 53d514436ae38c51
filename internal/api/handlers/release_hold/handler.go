package release_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	releaseHold "github.com/m04kA/SMC-LessonService/internal/usecase/release_hold"
)

const (
	msgInvalidSlotID = "invalid slot id"
	msgUnauthorized  = "authentication required"
	msgForbidden     = "only students can release holds"
	msgSlotNotFound  = "slot not found"
	msgHoldNotOwned  = "this slot is held by someone else"
	msgConcurrent    = "slot was changed, please try again"
)

// ReleaseResponse HTTP response model
type ReleaseResponse struct {
	OK       bool `json:"ok"`
	Released bool `json:"released"`
}

type Handler struct {
	useCase ReleaseHoldUseCase
	logger  Logger
}

func NewHandler(useCase ReleaseHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/release
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/release - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/release - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &releaseHold.Request{
		SlotID:    slotID,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, releaseHold.ErrForbidden):
			h.logger.Warn("POST /slots/{id}/release - Forbidden: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, releaseHold.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/release - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, releaseHold.ErrHoldNotOwned):
			h.logger.Warn("POST /slots/{id}/release - Hold not owned: slot_id=%d, user_id=%s", slotID, principal.UserID)
			handlers.RespondConflict(w, msgHoldNotOwned)

		case errors.Is(err, releaseHold.ErrConcurrentUpdate):
			h.logger.Warn("POST /slots/{id}/release - Concurrent update: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgConcurrent)

		case errors.Is(err, releaseHold.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		default:
			h.logger.Error("POST /slots/{id}/release - Failed to release hold: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/release - Hold released: slot_id=%d, user_id=%s, released=%t",
		slotID, principal.UserID, result.Released)
	handlers.RespondJSON(w, http.StatusOK, ReleaseResponse{OK: true, Released: result.Released})
}
