package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/internal/repository"
	"github.com/noah-isme/rehberlik-api/pkg/config"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[string]models.Appointment
	seq   int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: map[string]models.Appointment{}}
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Appointment, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, a)
	}
	SortAppointments(out)
	return out, len(out), nil
}

func (f *fakeAppointmentRepo) ListInRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.items {
		if !a.AppointmentDate.Before(from) && !a.AppointmentDate.After(to) {
			out = append(out, a)
		}
	}
	SortAppointments(out)
	return out, nil
}

func (f *fakeAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := a
	return &copied, nil
}

func (f *fakeAppointmentRepo) FindPlannedOnDate(ctx context.Context, date time.Time, excludeID string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.items {
		if a.Status == models.StatusPlanned && a.AppointmentDate.Equal(date) && a.ID != excludeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	appointment.ID = fmt.Sprintf("appt-%d", f.seq)
	appointment.Version = 1
	appointment.CreatedAt = time.Now().UTC()
	appointment.UpdatedAt = appointment.CreatedAt
	f.items[appointment.ID] = *appointment
	return nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.items[appointment.ID]
	if !ok || existing.Version != appointment.Version {
		return repository.ErrStaleVersion
	}
	appointment.Version++
	appointment.UpdatedAt = time.Now().UTC()
	f.items[appointment.ID] = *appointment
	return nil
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

type fakeSchedulingCache struct {
	mu       sync.Mutex
	values   map[string]string
	flushes  int
	setNXErr error
}

func newFakeSchedulingCache() *fakeSchedulingCache {
	return &fakeSchedulingCache{values: map[string]string{}}
}

func (f *fakeSchedulingCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value
	return true, nil
}

func (f *fakeSchedulingCache) GetString(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrCacheMiss, "key not found")
	}
	return value, nil
}

func (f *fakeSchedulingCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeSchedulingCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeSchedulingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func schedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		AllowOverlap:       true,
		FollowUpOffsetDays: 7,
		IdempotencyTTL:     time.Minute,
	}
}

func newAppointmentServiceForTest(repo *fakeAppointmentRepo, cache *fakeSchedulingCache, cfg config.SchedulingConfig) *AppointmentService {
	// Pass a true nil interface when no fake cache is supplied; a typed-nil
	// *fakeSchedulingCache would defeat the service's cache == nil guard.
	var c schedulingCache
	if cache != nil {
		c = cache
	}
	return NewAppointmentService(repo, c, cfg, nil, nil)
}

func validCreateRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		ParticipantType: "student",
		ParticipantName: "Ayşe Y.",
		AppointmentDate: "2024-03-10",
		StartTime:       "09:00",
		DurationMinutes: 15,
		Location:        "counseling_office",
		TopicTags:       []string{"motivation"},
	}
}

func TestAppointmentServiceCreate(t *testing.T) {
	repo := newFakeAppointmentRepo()
	cache := newFakeSchedulingCache()
	svc := newAppointmentServiceForTest(repo, cache, schedulingConfig())

	appointment, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, appointment.ID)
	assert.Equal(t, models.StatusPlanned, appointment.Status)
	assert.Equal(t, models.PriorityNormal, appointment.Priority)
	assert.Equal(t, 1, appointment.Version)
	assert.Equal(t, "Ayşe Y.", appointment.ParticipantName)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), appointment.AppointmentDate)
	assert.Equal(t, 1, cache.flushes, "creation must invalidate the calendar cache")
}

func TestAppointmentServiceCreateValidation(t *testing.T) {
	svc := newAppointmentServiceForTest(newFakeAppointmentRepo(), nil, schedulingConfig())

	cases := map[string]func(*CreateAppointmentRequest){
		"empty name":         func(r *CreateAppointmentRequest) { r.ParticipantName = "   " },
		"bad date":           func(r *CreateAppointmentRequest) { r.AppointmentDate = "10.03.2024" },
		"bad time":           func(r *CreateAppointmentRequest) { r.StartTime = "9am" },
		"zero duration":      func(r *CreateAppointmentRequest) { r.DurationMinutes = 0 },
		"unknown type":       func(r *CreateAppointmentRequest) { r.ParticipantType = "alien" },
		"unknown location":   func(r *CreateAppointmentRequest) { r.Location = "rooftop" },
		"unknown priority":   func(r *CreateAppointmentRequest) { r.Priority = "asap" },
		"missing start time": func(r *CreateAppointmentRequest) { r.StartTime = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreateRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req, "")
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAppointmentServiceCreateIdempotentReplay(t *testing.T) {
	repo := newFakeAppointmentRepo()
	cache := newFakeSchedulingCache()
	svc := newAppointmentServiceForTest(repo, cache, schedulingConfig())

	first, err := svc.Create(context.Background(), validCreateRequest(), "submit-1")
	require.NoError(t, err)

	replay, err := svc.Create(context.Background(), validCreateRequest(), "submit-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, replay.ID)
	assert.Len(t, repo.items, 1, "replay must not create a second row")
}

func TestAppointmentServiceIdempotencyReleasedOnFailedCreate(t *testing.T) {
	repo := newFakeAppointmentRepo()
	cache := newFakeSchedulingCache()
	cfg := schedulingConfig()
	cfg.AllowOverlap = false
	svc := newAppointmentServiceForTest(repo, cache, cfg)

	_, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	overlapping := validCreateRequest()
	overlapping.ParticipantName = "Mehmet K."
	overlapping.StartTime = "09:10"
	_, err = svc.Create(context.Background(), overlapping, "retry-key")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// The failed create must not pin the key; retrying with a free slot works.
	retried := overlapping
	retried.StartTime = "10:00"
	appointment, err := svc.Create(context.Background(), retried, "retry-key")
	require.NoError(t, err, "retry with the same idempotency key after a failed create")
	assert.Equal(t, "10:00", appointment.StartTime)
	assert.Len(t, repo.items, 2)
}

func TestAppointmentServiceCreateOverlapRejected(t *testing.T) {
	repo := newFakeAppointmentRepo()
	cfg := schedulingConfig()
	cfg.AllowOverlap = false
	svc := newAppointmentServiceForTest(repo, nil, cfg)

	_, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	overlapping := validCreateRequest()
	overlapping.ParticipantName = "Mehmet K."
	overlapping.StartTime = "09:10"
	_, err = svc.Create(context.Background(), overlapping, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	adjacent := validCreateRequest()
	adjacent.ParticipantName = "Mehmet K."
	adjacent.StartTime = "09:15"
	_, err = svc.Create(context.Background(), adjacent, "")
	assert.NoError(t, err, "back-to-back slots do not overlap")
}

func TestAppointmentServiceUpdate(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	newTime := "11:30"
	urgent := "urgent"
	updated, err := svc.Update(context.Background(), created.ID, UpdateAppointmentRequest{
		StartTime: &newTime,
		Priority:  &urgent,
	})
	require.NoError(t, err)

	assert.Equal(t, "11:30", updated.StartTime)
	assert.Equal(t, models.PriorityUrgent, updated.Priority)
	assert.Equal(t, "Ayşe Y.", updated.ParticipantName, "unset fields keep their value")
	assert.Equal(t, 2, updated.Version)
}

func TestAppointmentServiceUpdateClosedRejected(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), created.ID, CloseAppointmentRequest{Status: "cancelled"})
	require.NoError(t, err)

	name := "Someone Else"
	_, err = svc.Update(context.Background(), created.ID, UpdateAppointmentRequest{ParticipantName: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceUpdateStaleVersion(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	name := "Ayşe Yılmaz"
	_, err = svc.Update(context.Background(), created.ID, UpdateAppointmentRequest{
		ParticipantName: &name,
		ExpectedVersion: 99,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 412, appErrors.FromError(err).Status)
}

func TestAppointmentServiceCloseAttendedWithFollowUp(t *testing.T) {
	repo := newFakeAppointmentRepo()
	cache := newFakeSchedulingCache()
	svc := newAppointmentServiceForTest(repo, cache, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	summary := "Discussed exam stress, coping strategies agreed"
	result, err := svc.Close(context.Background(), created.ID, CloseAppointmentRequest{
		Status:          "attended",
		OutcomeSummary:  &summary,
		OutcomeDecision: []string{"weekly check-in"},
		CreateFollowUp:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAttended, result.Appointment.Status)
	require.NotNil(t, result.Appointment.OutcomeSummary)
	assert.Equal(t, summary, *result.Appointment.OutcomeSummary)
	assert.Equal(t, []string{"weekly check-in"}, []string(result.Appointment.OutcomeDecision))

	require.NotNil(t, result.FollowUp)
	assert.Equal(t, models.StatusPlanned, result.FollowUp.Status)
	assert.Equal(t, "Ayşe Y.", result.FollowUp.ParticipantName)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), result.FollowUp.AppointmentDate,
		"follow-up lands seven days after the original")
	assert.True(t, result.FollowUp.IsFollowUp())
	assert.NotEqual(t, created.ID, result.FollowUp.ID)
}

func TestAppointmentServiceCloseWithoutFollowUp(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	result, err := svc.Close(context.Background(), created.ID, CloseAppointmentRequest{Status: "not_attended"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotAttended, result.Appointment.Status)
	assert.Nil(t, result.FollowUp)
	assert.Len(t, repo.items, 1)
}

func TestAppointmentServiceCloseTwiceRejected(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), created.ID, CloseAppointmentRequest{Status: "attended"})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), created.ID, CloseAppointmentRequest{Status: "cancelled"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceCloseRequiresTerminalStatus(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), created.ID, CloseAppointmentRequest{Status: "planned"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceScheduleFollowUpCustomOffset(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	created, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	followUp, err := svc.ScheduleFollowUp(context.Background(), created.ID, 14)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), followUp.AppointmentDate)
}

func TestAppointmentServiceDeleteIdempotent(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	require.NoError(t, svc.Delete(context.Background(), "never-existed"))
}

func TestAppointmentServiceListOnDate(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newAppointmentServiceForTest(repo, nil, schedulingConfig())

	_, err := svc.Create(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)
	other := validCreateRequest()
	other.ParticipantName = "Mehmet K."
	other.ParticipantType = "parent"
	other.StartTime = "11:00"
	_, err = svc.Create(context.Background(), other, "")
	require.NoError(t, err)
	elsewhere := validCreateRequest()
	elsewhere.AppointmentDate = "2024-03-11"
	_, err = svc.Create(context.Background(), elsewhere, "")
	require.NoError(t, err)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	all, err := svc.ListOnDate(context.Background(), day, "", "", "", "")
	require.NoError(t, err)
	require.Len(t, all, 2, "only the date's appointments appear")
	assert.Equal(t, "Ayşe Y.", all[0].ParticipantName, "sorted by start time")

	narrowed, err := svc.ListOnDate(context.Background(), day, "mehmet", "", "", "")
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, "Mehmet K.", narrowed[0].ParticipantName)

	parents, err := svc.ListOnDate(context.Background(), day, "", "", models.ParticipantParent, "")
	require.NoError(t, err)
	assert.Len(t, parents, 1)

	_, err = svc.ListOnDate(context.Background(), day, "", "unknown", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceGetNotFound(t *testing.T) {
	svc := newAppointmentServiceForTest(newFakeAppointmentRepo(), nil, schedulingConfig())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
