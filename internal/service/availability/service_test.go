package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-LessonService/internal/service/availability/models"
	"github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

// Воскресенье, 9 марта 2025, 12:00 UTC
var testNow = time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)

type failingSyncer struct{ err error }

func (f failingSyncer) Execute(context.Context, *sync_availability.Request) (*sync_availability.Response, error) {
	return nil, f.err
}

type fixture struct {
	store *storetest.Store
	svc   *Service
	tutor domain.Principal
}

func newFixture(syncer Syncer) *fixture {
	store := storetest.NewStore()
	clock := storetest.NewClock(testNow)

	if syncer == nil {
		uc := sync_availability.NewUseCase(
			storetest.Availability{S: store},
			storetest.Slots{S: store},
			storetest.Profiles{S: store},
			&storetest.Notifier{},
			&storetest.TxManager{},
			storetest.Logger{},
			sync_availability.Defaults{HorizonWeeks: 1, LessonMinutes: 60, PriceCents: 2000},
		)
		uc.SetTimeProvider(clock)
		syncer = uc
	}

	svc := NewService(storetest.Availability{S: store}, syncer, storetest.Logger{})
	svc.SetTimeProvider(clock)

	return &fixture{
		store: store,
		svc:   svc,
		tutor: domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor},
	}
}

func (f *fixture) saveRequest(hours map[string][]int) *models.SaveAvailabilityRequest {
	return &models.SaveAvailabilityRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		Timezone:  "Europe/London",
		Hours:     hours,
	}
}

func TestSave_MaterializesSlots(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.svc.Save(context.Background(), f.saveRequest(map[string][]int{"Monday": {10, 9, 9}}))
	require.NoError(t, err)

	assert.Empty(t, resp.Warning)
	require.NotNil(t, resp.Sync)
	assert.Equal(t, 2, resp.Sync.CreatedCount)
	assert.Equal(t, []int{9, 10}, resp.Availability.Hours["monday"])
	assert.Len(t, f.store.TutorSlots(f.tutor.UserID), 2)

	got, err := f.svc.Get(context.Background(), f.tutor.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", got.Timezone)
	assert.Equal(t, []int{9, 10}, got.Hours["monday"])
}

func TestSave_NumericWeekdayKeys(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.svc.Save(context.Background(), f.saveRequest(map[string][]int{"1": {9}, "0": {}}))
	require.NoError(t, err)

	assert.Equal(t, map[string][]int{"monday": {9}}, resp.Availability.Hours)
}

func TestSave_SyncFailureKeepsPattern(t *testing.T) {
	f := newFixture(failingSyncer{err: errors.New("db is down")})

	resp, err := f.svc.Save(context.Background(), f.saveRequest(map[string][]int{"monday": {9}}))
	require.NoError(t, err)

	assert.Equal(t, domain.MsgSlotsRefreshFailed, resp.Warning)
	assert.Nil(t, resp.Sync)

	_, err = f.svc.Get(context.Background(), f.tutor.UserID)
	assert.NoError(t, err)
}

func TestSave_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *models.SaveAvailabilityRequest)
		wantErr error
	}{
		{
			name:    "student",
			mutate:  func(req *models.SaveAvailabilityRequest) { req.Principal.Role = domain.RoleStudent },
			wantErr: ErrAccessDenied,
		},
		{
			name:    "other tutor",
			mutate:  func(req *models.SaveAvailabilityRequest) { req.TutorID = uuid.New() },
			wantErr: ErrAccessDenied,
		},
		{
			name:    "unknown timezone",
			mutate:  func(req *models.SaveAvailabilityRequest) { req.Timezone = "Mars/Olympus" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad weekday",
			mutate:  func(req *models.SaveAvailabilityRequest) { req.Hours = map[string][]int{"7": {9}} },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad hour",
			mutate:  func(req *models.SaveAvailabilityRequest) { req.Hours = map[string][]int{"friday": {24}} },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			req := f.saveRequest(map[string][]int{"monday": {9}})
			tt.mutate(req)

			_, err := f.svc.Save(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestAddTimeOff_PrunesSlots(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.Save(context.Background(), f.saveRequest(map[string][]int{"monday": {9, 10}}))
	require.NoError(t, err)

	resp, err := f.svc.AddTimeOff(context.Background(), &models.AddTimeOffRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		StartsAt:  time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		EndsAt:    time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
		Reason:    ptr.Ptr("conference"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Sync)
	assert.Equal(t, 2, resp.Sync.RemovedCount)
	assert.Empty(t, f.store.TutorSlots(f.tutor.UserID))

	list, err := f.svc.ListTimeOff(context.Background(), &models.ListTimeOffRequest{TutorID: f.tutor.UserID})
	require.NoError(t, err)
	require.Len(t, list.TimeOff, 1)
	assert.Equal(t, "conference", *list.TimeOff[0].Reason)
}

func TestAddTimeOff_WithoutPattern(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.svc.AddTimeOff(context.Background(), &models.AddTimeOffRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		StartsAt:  testNow.Add(24 * time.Hour),
		EndsAt:    testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Sync)
	assert.Empty(t, resp.Warning)
}

func TestAddTimeOff_Errors(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.AddTimeOff(context.Background(), &models.AddTimeOffRequest{
		Principal: f.tutor,
		TutorID:   f.tutor.UserID,
		StartsAt:  testNow.Add(48 * time.Hour),
		EndsAt:    testNow.Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddTimeOff(context.Background(), &models.AddTimeOffRequest{
		Principal: domain.Principal{UserID: uuid.New(), Role: domain.RoleTutor},
		TutorID:   f.tutor.UserID,
		StartsAt:  testNow.Add(24 * time.Hour),
		EndsAt:    testNow.Add(48 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListTimeOff_InvalidPeriod(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.ListTimeOff(context.Background(), &models.ListTimeOffRequest{
		TutorID: f.tutor.UserID,
		From:    ptr.Ptr(testNow),
		To:      ptr.Ptr(testNow.Add(-time.Hour)),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
