package confirm_booking

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

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	confirmBooking "github.com/m04kA/SMC-LessonService/internal/usecase/confirm_booking"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

type stubUseCase struct {
	resp *confirmBooking.Response
	err  error
}

func (s *stubUseCase) Execute(context.Context, *confirmBooking.Request) (*confirmBooking.Response, error) {
	return s.resp, s.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(uc ConfirmBookingUseCase) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/3/book", nil)
	req = mux.SetURLVars(req, map[string]string{"slotId": "3"})
	req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{UserID: uuid.New(), Role: domain.RoleStudent}))

	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	tutor, student := uuid.New(), uuid.New()
	startsAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	rec := serve(&stubUseCase{resp: &confirmBooking.Response{
		Booking: &domain.Booking{ID: 11, TutorID: tutor, StudentID: student, SlotID: ptr.Ptr(int64(3)), StartsAt: startsAt, Status: domain.BookingStatusBooked},
		Slot:    &domain.Slot{ID: 3, TutorID: tutor, StartsAt: startsAt, Status: domain.SlotStatusBooked, RoomID: ptr.Ptr("lesson-abc")},
	}})

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
		Slot struct {
			Status string `json:"status"`
			RoomID string `json:"roomId"`
		} `json:"slot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.Booking.ID)
	assert.Equal(t, "booked", body.Booking.Status)
	assert.Equal(t, "booked", body.Slot.Status)
	assert.Equal(t, "lesson-abc", body.Slot.RoomID)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{err: confirmBooking.ErrHoldExpired, wantStatus: http.StatusGone, wantMsg: domain.MsgHoldExpired},
		{err: confirmBooking.ErrSlotNotAvailable, wantStatus: http.StatusConflict, wantMsg: domain.MsgBookingFailed},
		{err: confirmBooking.ErrSlotNotFound, wantStatus: http.StatusNotFound, wantMsg: msgSlotNotFound},
		{err: confirmBooking.ErrForbidden, wantStatus: http.StatusForbidden, wantMsg: msgForbidden},
		{err: confirmBooking.ErrSlotInPast, wantStatus: http.StatusUnprocessableEntity, wantMsg: msgSlotInPast},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(&stubUseCase{err: tt.err})

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}
