package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/pkg/config"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type stubProjector struct {
	kind    models.EventType
	events  []models.CalendarEvent
	fetches int
}

func (p *stubProjector) Kind() models.EventType { return p.kind }

func (p *stubProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	p.fetches++
	return p.events, nil
}

type fakeCalendarCache struct {
	values map[string][]byte
}

func newFakeCalendarCache() *fakeCalendarCache {
	return &fakeCalendarCache{values: map[string][]byte{}}
}

func (f *fakeCalendarCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.values[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "key not found")
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCalendarCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	return nil
}

func TestWindowDay(t *testing.T) {
	anchor := time.Date(2024, 3, 13, 16, 45, 0, 0, time.UTC)
	window := Window(anchor, models.ViewDay)
	day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, window.From)
	assert.Equal(t, day, window.To)
}

func TestWindowWeekStartsMonday(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	window := Window(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), models.ViewWeek)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), window.To)

	// A Sunday anchor still belongs to the week that started the Monday before.
	window = Window(time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), models.ViewWeek)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), window.From)
}

func TestWindowMonthPadsDisplayWeeks(t *testing.T) {
	window := Window(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), models.ViewMonth)
	assert.Equal(t, time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC), window.To)
	assert.True(t, window.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, window.Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
}

func mergeFixture() map[models.EventType][]models.CalendarEvent {
	return map[models.EventType][]models.CalendarEvent{
		models.EventAppointment: {
			{ID: "a1", Date: "2024-03-10", Time: "10:00", Title: "Ayşe Y. (Öğrenci)", Type: models.EventAppointment},
			{ID: "a2", Date: "2024-03-11", Time: "09:00", Title: "Mehmet K. (Veli)", Type: models.EventAppointment},
		},
		models.EventActivity: {
			{ID: "c1", Date: "2024-03-10", Time: "09:00", Title: "9-A: Sınav kaygısı", Type: models.EventActivity},
		},
		models.EventTask: {
			{ID: "t1", Date: "2024-03-10", Title: "Prepare referral form", Type: models.EventTask},
		},
		models.EventFollowUp: {
			{ID: "follow-up-a3", Date: "2024-03-10", Title: "Takip: Zeynep D.", Type: models.EventFollowUp},
		},
	}
}

func TestMergeEventsOrdering(t *testing.T) {
	merged := MergeEvents(mergeFixture(), models.AllSources())
	require.Len(t, merged, 5)

	// Same date: timed events first by time, untimed entries after.
	assert.Equal(t, "c1", merged[0].ID)
	assert.Equal(t, "a1", merged[1].ID)
	assert.Equal(t, "t1", merged[2].ID)
	assert.Equal(t, "follow-up-a3", merged[3].ID)
	// Next date last.
	assert.Equal(t, "a2", merged[4].ID)
}

func TestMergeEventsToggles(t *testing.T) {
	toggles := models.AllSources()
	toggles.Tasks = false
	toggles.FollowUps = false

	merged := MergeEvents(mergeFixture(), toggles)
	require.Len(t, merged, 3)
	for _, event := range merged {
		assert.NotEqual(t, models.EventTask, event.Type)
		assert.NotEqual(t, models.EventFollowUp, event.Type)
	}

	none := models.SourceToggles{}
	assert.Empty(t, MergeEvents(mergeFixture(), none))
}

func TestCalendarServiceViewCachesSourceLists(t *testing.T) {
	projector := &stubProjector{kind: models.EventAppointment, events: []models.CalendarEvent{
		{ID: "a1", Date: "2024-03-13", Time: "10:00", Title: "Ayşe Y. (Öğrenci)", Type: models.EventAppointment},
	}}
	cache := newFakeCalendarCache()
	svc := NewCalendarService([]Projector{projector}, cache, config.CalendarConfig{CacheTTL: time.Minute}, nil, nil)

	anchor := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	first, _, err := svc.View(context.Background(), anchor, models.ViewWeek, models.AllSources())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Toggling a source off and on again must not hit the projector twice.
	toggles := models.AllSources()
	toggles.Appointments = false
	second, _, err := svc.View(context.Background(), anchor, models.ViewWeek, toggles)
	require.NoError(t, err)
	assert.Empty(t, second)

	third, _, err := svc.View(context.Background(), anchor, models.ViewWeek, models.AllSources())
	require.NoError(t, err)
	assert.Len(t, third, 1)

	assert.Equal(t, 1, projector.fetches, "repeat views of the same window reuse the cached list")
}

func TestCalendarServiceCountsCacheLookups(t *testing.T) {
	projector := &stubProjector{kind: models.EventAppointment, events: []models.CalendarEvent{
		{ID: "a1", Date: "2024-03-13", Time: "10:00", Title: "Ayşe Y. (Öğrenci)", Type: models.EventAppointment},
	}}
	metrics := NewMetricsService()
	svc := NewCalendarService([]Projector{projector}, newFakeCalendarCache(), config.CalendarConfig{CacheTTL: time.Minute}, metrics, nil)

	anchor := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.View(context.Background(), anchor, models.ViewDay, models.AllSources())
	require.NoError(t, err)
	_, _, err = svc.View(context.Background(), anchor, models.ViewDay, models.AllSources())
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
}

func TestCalendarServiceViewWithoutCache(t *testing.T) {
	projector := &stubProjector{kind: models.EventAppointment}
	svc := NewCalendarService([]Projector{projector}, nil, config.CalendarConfig{}, nil, nil)

	_, window, err := svc.View(context.Background(), time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), models.ViewDay, models.AllSources())
	require.NoError(t, err)
	assert.Equal(t, window.From, window.To)
	assert.Equal(t, 1, projector.fetches)
}

func TestCalendarServiceViewRejectsUnknownView(t *testing.T) {
	svc := NewCalendarService(nil, nil, config.CalendarConfig{}, nil, nil)

	_, _, err := svc.View(context.Background(), time.Now(), models.CalendarView("year"), models.AllSources())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceEventsForDate(t *testing.T) {
	projector := &stubProjector{kind: models.EventAppointment, events: []models.CalendarEvent{
		{ID: "a1", Date: "2024-03-13", Time: "10:00", Title: "Ayşe Y. (Öğrenci)", Type: models.EventAppointment},
		{ID: "a2", Date: "2024-03-14", Time: "09:00", Title: "Mehmet K. (Veli)", Type: models.EventAppointment},
	}}
	svc := NewCalendarService([]Projector{projector}, nil, config.CalendarConfig{}, nil, nil)

	events, err := svc.EventsForDate(context.Background(), time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].ID)
}

func TestAppointmentProjectorTitlesAndColors(t *testing.T) {
	repo := newFakeAppointmentRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Appointment{
		ParticipantType: models.ParticipantStudent,
		ParticipantName: "Ayşe Y.",
		AppointmentDate: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 15,
		Status:          models.StatusPlanned,
	}))

	projector := NewAppointmentProjector(repo)
	window := Window(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), models.ViewDay)
	events, err := projector.Fetch(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "Ayşe Y. (Öğrenci)", events[0].Title)
	assert.Equal(t, "2024-03-13", events[0].Date)
	assert.Equal(t, "10:00", events[0].Time)
	assert.Equal(t, models.StatusPlanned.Color(), events[0].Color)
}

func TestFollowUpProjectorFiltersPlannedFollowUps(t *testing.T) {
	repo := newFakeAppointmentRepo()
	day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	purpose := models.FollowUpPrefix + "exam stress"
	require.NoError(t, repo.Create(context.Background(), &models.Appointment{
		ParticipantType: models.ParticipantStudent, ParticipantName: "Ayşe Y.",
		AppointmentDate: day, StartTime: "10:00", Status: models.StatusPlanned, Purpose: &purpose,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Appointment{
		ParticipantType: models.ParticipantStudent, ParticipantName: "Mehmet K.",
		AppointmentDate: day, StartTime: "11:00", Status: models.StatusPlanned,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Appointment{
		ParticipantType: models.ParticipantStudent, ParticipantName: "Zeynep D.",
		AppointmentDate: day, StartTime: "12:00", Status: models.StatusAttended, Purpose: &purpose,
	}))

	projector := NewFollowUpProjector(repo)
	events, err := projector.Fetch(context.Background(), Window(day, models.ViewDay))
	require.NoError(t, err)
	require.Len(t, events, 1, "only still-planned follow-ups become reminders")

	assert.Equal(t, "Takip: Ayşe Y.", events[0].Title)
	assert.Empty(t, events[0].Time, "reminders are untimed")
	assert.Equal(t, models.EventFollowUp, events[0].Type)
}
