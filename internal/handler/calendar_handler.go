package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/internal/service"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
	"github.com/noah-isme/rehberlik-api/pkg/response"
)

// CalendarHandler wires the calendar aggregator to HTTP routes.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs a new CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// View godoc
// @Summary Aggregated calendar view
// @Tags Calendar
// @Produce json
// @Param view query string false "day, week or month (default month)"
// @Param anchor query string false "Navigated anchor date (YYYY-MM-DD, default today)"
// @Param appointments query bool false "Show appointment events (default true)"
// @Param activities query bool false "Show class activity events (default true)"
// @Param tasks query bool false "Show task events (default true)"
// @Param follow_ups query bool false "Show follow-up reminders (default true)"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) View(c *gin.Context) {
	view := models.CalendarView(c.DefaultQuery("view", string(models.ViewMonth)))

	anchor := time.Now().UTC()
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid anchor parameter"))
			return
		}
		anchor = parsed
	}

	toggles := models.SourceToggles{
		Appointments: boolQuery(c, "appointments", true),
		Activities:   boolQuery(c, "activities", true),
		Tasks:        boolQuery(c, "tasks", true),
		FollowUps:    boolQuery(c, "follow_ups", true),
	}

	events, window, err := h.calendar.View(c.Request.Context(), anchor, view, toggles)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil, map[string]interface{}{
		"view": view,
		"from": window.From.Format(dateLayout),
		"to":   window.To.Format(dateLayout),
	})
}

// EventsForDate godoc
// @Summary Events of a single date
// @Tags Calendar
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) EventsForDate(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date parameter is required"))
		return
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date parameter"))
		return
	}
	events, err := h.calendar.EventsForDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

func boolQuery(c *gin.Context, name string, fallback bool) bool {
	switch strings.ToLower(c.Query(name)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}
