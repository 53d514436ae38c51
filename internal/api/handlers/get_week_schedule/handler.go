package get_week_schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	getWeekSchedule "github.com/m04kA/SMC-LessonService/internal/usecase/get_week_schedule"
)

const (
	msgInvalidTutorID = "invalid tutor id"
	msgInvalidWeek    = "invalid week, expected YYYY-MM-DD"
	msgUnauthorized   = "authentication required"
	msgForbidden      = "you can only view your own schedule"
)

type Handler struct {
	useCase GetWeekScheduleUseCase
	logger  Logger
}

func NewHandler(useCase GetWeekScheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/tutors/{tutorId}/schedule?week=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/schedule - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	var weekOf time.Time
	if raw := r.URL.Query().Get("week"); raw != "" {
		weekOf, err = time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /tutors/{id}/schedule - Invalid week: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidWeek)
			return
		}
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("GET /tutors/{id}/schedule - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getWeekSchedule.Request{
		TutorID:   tutorID,
		WeekOf:    weekOf,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, getWeekSchedule.ErrForbidden):
			h.logger.Warn("GET /tutors/{id}/schedule - Forbidden: tutor_id=%s, user_id=%s", tutorID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, getWeekSchedule.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidWeek)

		default:
			h.logger.Error("GET /tutors/{id}/schedule - Failed to build schedule: tutor_id=%s, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tutors/{id}/schedule - Schedule built: tutor_id=%s, week=%s, warnings=%d",
		tutorID, result.Schedule.WeekStart.Format(domain.DateFormat), len(result.Schedule.Warnings))
	handlers.RespondJSON(w, http.StatusOK, FromDomainSchedule(result.Schedule))
}
