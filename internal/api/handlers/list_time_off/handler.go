package list_time_off

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/internal/service/availability/models"
)

const (
	msgInvalidTutorID = "invalid tutor id"
	msgInvalidPeriod  = "invalid period: 'from' and 'to' must be RFC3339 and 'to' after 'from'"
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

// Handle GET /api/v1/tutors/{tutorId}/time-off?from=&to=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/time-off - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.service.ListTimeOff(r.Context(), &models.ListTimeOffRequest{
		TutorID: tutorID,
		From:    from,
		To:      to,
	})
	if err != nil {
		if errors.Is(err, availability.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /tutors/{id}/time-off - Failed to list time off: tutor_id=%s, error=%v", tutorID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
