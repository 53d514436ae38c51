package add_time_off

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/internal/service/availability/models"
)

const (
	msgInvalidTutorID     = "invalid tutor id"
	msgInvalidRequestBody = "invalid request body"
	msgUnauthorized       = "authentication required"
	msgForbidden          = "you can only add your own time off"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/tutors/{tutorId}/time-off
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("POST /tutors/{id}/time-off - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /tutors/{id}/time-off - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.AddTimeOffRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /tutors/{id}/time-off - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}
	req.Principal = principal
	req.TutorID = tutorID

	result, err := h.service.AddTimeOff(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("POST /tutors/{id}/time-off - Access denied: tutor_id=%s, user_id=%s", tutorID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /tutors/{id}/time-off - Failed to add time off: tutor_id=%s, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tutors/{id}/time-off - Time off added: id=%d, tutor_id=%s", result.TimeOff.ID, tutorID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
