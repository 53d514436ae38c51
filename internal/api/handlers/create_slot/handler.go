package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/service/slots"
	"github.com/m04kA/SMC-LessonService/internal/service/slots/models"
)

const (
	msgInvalidTutorID     = "invalid tutor id"
	msgInvalidRequestBody = "invalid request body"
	msgUnauthorized       = "authentication required"
	msgForbidden          = "you can only create your own slots"
	msgSlotInPast         = "slot must start in the future"
	msgSlotAlreadyExists  = "you already have a slot at this time"
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

// Handle POST /api/v1/tutors/{tutorId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("POST /tutors/{id}/slots - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /tutors/{id}/slots - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateSlotRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /tutors/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}
	req.Principal = principal
	req.TutorID = tutorID

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("POST /tutors/{id}/slots - Access denied: tutor_id=%s, user_id=%s", tutorID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, slots.ErrSlotInPast):
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSlotInPast)

		case errors.Is(err, slots.ErrSlotAlreadyExists):
			handlers.RespondConflict(w, msgSlotAlreadyExists)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /tutors/{id}/slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /tutors/{id}/slots - Failed to create slot: tutor_id=%s, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tutors/{id}/slots - Slot created: slot_id=%d, tutor_id=%s, warnings=%d",
		result.Slot.ID, tutorID, len(result.Warnings))
	handlers.RespondJSON(w, http.StatusCreated, result)
}
