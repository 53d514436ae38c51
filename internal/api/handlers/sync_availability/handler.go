package sync_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	syncAvailability "github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
)

const (
	msgInvalidTutorID     = "invalid tutor id"
	msgInvalidRequestBody = "invalid request body"
	msgUnauthorized       = "authentication required"
	msgForbidden          = "you can only sync your own slots"
	msgPatternNotFound    = "availability is not published yet"
	msgInvalidWindow      = "weeks must be between 0 and 52"
	msgConcurrent         = "slots were changed, please try again"
)

type Handler struct {
	useCase SyncAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase SyncAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/tutors/{tutorId}/availability/sync
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := handlers.PathUUID(r, "tutorId")
	if err != nil {
		h.logger.Warn("POST /tutors/{id}/availability/sync - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /tutors/{id}/availability/sync - Missing principal")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	// Тело необязательно: без него синхронизируется окно по умолчанию
	var req SyncRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeAndValidate(r, &req); err != nil {
			h.logger.Warn("POST /tutors/{id}/availability/sync - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(tutorID, principal))
	if err != nil {
		switch {
		case errors.Is(err, syncAvailability.ErrForbidden):
			h.logger.Warn("POST /tutors/{id}/availability/sync - Forbidden: tutor_id=%s, user_id=%s", tutorID, principal.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, syncAvailability.ErrPatternNotFound):
			h.logger.Warn("POST /tutors/{id}/availability/sync - Pattern not found: tutor_id=%s", tutorID)
			handlers.RespondNotFound(w, msgPatternNotFound)

		case errors.Is(err, syncAvailability.ErrConcurrentUpdate):
			h.logger.Warn("POST /tutors/{id}/availability/sync - Concurrent update: tutor_id=%s", tutorID)
			handlers.RespondConflict(w, msgConcurrent)

		case errors.Is(err, syncAvailability.ErrInvalidInput):
			h.logger.Warn("POST /tutors/{id}/availability/sync - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("POST /tutors/{id}/availability/sync - Failed to sync: tutor_id=%s, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /tutors/{id}/availability/sync - Synced: tutor_id=%s, created=%d, removed=%d",
		tutorID, result.CreatedCount, result.RemovedCount)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
