package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

const (
	msgInvalidTutorID = "invalid tutor id"
	msgNotFound       = "availability is not published yet"
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

// Handle GET /api/v1/tutors/{tutorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/availability - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	result, err := h.service.Get(r.Context(), tutorID)
	if err != nil {
		if errors.Is(err, availability.ErrPatternNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /tutors/{id}/availability - Failed to get availability: tutor_id=%s, error=%v", tutorID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
