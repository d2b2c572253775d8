package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/internal/service"
	"github.com/noah-isme/rehberlik-api/pkg/config"
)

type staticProjector struct {
	kind   models.EventType
	events []models.CalendarEvent
}

func (p *staticProjector) Kind() models.EventType { return p.kind }

func (p *staticProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	return p.events, nil
}

func newCalendarRouter(projectors ...service.Projector) *gin.Engine {
	svc := service.NewCalendarService(projectors, nil, config.CalendarConfig{}, nil, nil)
	h := NewCalendarHandler(svc)

	r := gin.New()
	r.GET("/calendar", h.View)
	r.GET("/calendar/events", h.EventsForDate)
	return r
}

func calendarFixtureProjectors() []service.Projector {
	return []service.Projector{
		&staticProjector{kind: models.EventAppointment, events: []models.CalendarEvent{
			{ID: "a1", Date: "2024-03-13", Time: "10:00", Title: "Ayşe Y. (Öğrenci)", Type: models.EventAppointment},
		}},
		&staticProjector{kind: models.EventTask, events: []models.CalendarEvent{
			{ID: "t1", Date: "2024-03-13", Title: "Prepare referral form", Type: models.EventTask},
		}},
	}
}

func TestCalendarHandlerWeekView(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar?view=week&anchor=2024-03-13", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var events []models.CalendarEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "a1", events[0].ID, "timed events come before untimed ones")
	assert.Equal(t, "t1", events[1].ID)

	require.NotNil(t, env.Meta)
	assert.Equal(t, "week", env.Meta["view"])
	assert.Equal(t, "2024-03-11", env.Meta["from"])
	assert.Equal(t, "2024-03-17", env.Meta["to"])
}

func TestCalendarHandlerSourceToggles(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar?view=week&anchor=2024-03-13&tasks=false", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var events []models.CalendarEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventAppointment, events[0].Type)
}

func TestCalendarHandlerRejectsUnknownView(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar?view=decade", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerRejectsBadAnchor(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar?anchor=13-03-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerEventsForDate(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar/events?date=2024-03-13", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var events []models.CalendarEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Len(t, events, 2)

	w = doRequest(r, http.MethodGet, "/calendar/events?date=2024-04-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Empty(t, events)
}

func TestCalendarHandlerEventsForDateRequiresDate(t *testing.T) {
	r := newCalendarRouter(calendarFixtureProjectors()...)

	w := doRequest(r, http.MethodGet, "/calendar/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
