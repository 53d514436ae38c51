package save_availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/internal/service/availability/models"
)

type stubService struct {
	resp *models.SaveAvailabilityResponse
	err  error
	got  *models.SaveAvailabilityRequest
}

func (s *stubService) Save(_ context.Context, req *models.SaveAvailabilityRequest) (*models.SaveAvailabilityResponse, error) {
	s.got = req
	return s.resp, s.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc AvailabilityService, body string) *httptest.ResponseRecorder {
	tutorID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tutors/"+tutorID.String()+"/availability", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"tutorId": tutorID.String()})
	req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{UserID: tutorID, Role: domain.RoleTutor}))

	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_SavedWithWarning(t *testing.T) {
	svc := &stubService{resp: &models.SaveAvailabilityResponse{
		Availability: models.AvailabilityResponse{Timezone: "Europe/London", Hours: map[string][]int{"monday": {9}}},
		Warning:      domain.MsgSlotsRefreshFailed,
	}}

	rec := serve(svc, `{"timezone":"Europe/London","hours":{"monday":[9]}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{9}, svc.got.Hours["monday"])

	var body models.SaveAvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.MsgSlotsRefreshFailed, body.Warning)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&stubService{}, `{"hours":{"monday":[9]}}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(&stubService{err: availability.ErrInvalidInput}, `{"timezone":"X","hours":{}}`).Code)
	assert.Equal(t, http.StatusForbidden, serve(&stubService{err: availability.ErrAccessDenied}, `{"timezone":"UTC","hours":{}}`).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&stubService{err: errors.New("boom")}, `{"timezone":"UTC","hours":{}}`).Code)
}
