package list_tutor_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/service/slots"
	"github.com/m04kA/SMC-LessonService/internal/service/slots/models"
)

const (
	msgInvalidTutorID = "invalid tutor id"
	msgInvalidPeriod  = "invalid period: 'from' and 'to' must be RFC3339 and 'to' after 'from'"
	msgInvalidFlag    = "invalid 'available' flag"
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

// Handle GET /api/v1/tutors/{tutorId}/slots?from=&to=&available=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/slots - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/slots - %v", err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/slots - %v", err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}
	onlyAvailable, err := handlers.QueryBool(r, "available")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/slots - %v", err)
		handlers.RespondBadRequest(w, msgInvalidFlag)
		return
	}

	result, err := h.service.List(r.Context(), &models.ListSlotsRequest{
		TutorID:       tutorID,
		From:          from,
		To:            to,
		OnlyAvailable: onlyAvailable,
	})
	if err != nil {
		if errors.Is(err, slots.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /tutors/{id}/slots - Failed to list slots: tutor_id=%s, error=%v", tutorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /tutors/{id}/slots - Slots retrieved: tutor_id=%s, count=%d", tutorID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
