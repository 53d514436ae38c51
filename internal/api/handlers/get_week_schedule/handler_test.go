package get_week_schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	getWeekSchedule "github.com/m04kA/SMC-LessonService/internal/usecase/get_week_schedule"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

type stubUseCase struct {
	got *getWeekSchedule.Request
	err error
}

func (s *stubUseCase) Execute(_ context.Context, req *getWeekSchedule.Request) (*getWeekSchedule.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}

	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	reason := domain.ReasonOutOfPattern
	return &getWeekSchedule.Response{Schedule: &domain.WeekSchedule{
		TutorID:   req.TutorID,
		Timezone:  "UTC",
		WeekStart: monday,
		Days: []domain.ScheduleDay{{
			Date:    monday,
			Weekday: time.Monday,
			Cells: []domain.ScheduleCell{
				{StartsAt: monday, Hour: 0, Status: domain.CellStatusUnavailable, Reason: &reason},
				{
					StartsAt: monday.Add(time.Hour),
					Hour:     1,
					Status:   domain.CellStatusBooked,
					SlotID:   ptr.Ptr(int64(5)),
					Student:  &domain.Profile{ID: uuid.New(), DisplayName: "Ada"},
				},
			},
		}},
	}}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(uc GetWeekScheduleUseCase, tutorID, week string) *httptest.ResponseRecorder {
	target := "/api/v1/tutors/" + tutorID + "/schedule"
	if week != "" {
		target += "?week=" + week
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = mux.SetURLVars(req, map[string]string{"tutorId": tutorID})
	req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor}))

	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_RendersGrid(t *testing.T) {
	uc := &stubUseCase{}
	tutorID := uuid.New()

	rec := serve(uc, tutorID.String(), "2025-03-12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), uc.got.WeekOf)

	var body WeekScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-10", body.WeekStart)
	assert.Empty(t, body.Warnings)
	require.Len(t, body.Days, 1)
	require.Len(t, body.Days[0].Cells, 2)
	assert.Equal(t, "out_of_pattern", *body.Days[0].Cells[0].Reason)
	assert.Equal(t, "booked", body.Days[0].Cells[1].Status)
	assert.Equal(t, "Ada", body.Days[0].Cells[1].Student.DisplayName)
}

func TestHandle_BadInput(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, "not-a-uuid", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, uuid.NewString(), "12/03/2025").Code)
	assert.Equal(t, http.StatusForbidden, serve(&stubUseCase{err: getWeekSchedule.ErrForbidden}, uuid.NewString(), "").Code)
}
