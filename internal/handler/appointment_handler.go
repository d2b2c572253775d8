package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/internal/service"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
	"github.com/noah-isme/rehberlik-api/pkg/response"
)

const dateLayout = "2006-01-02"

// AppointmentHandler wires the appointment service to HTTP routes.
type AppointmentHandler struct {
	appointments *service.AppointmentService
}

// NewAppointmentHandler constructs a new AppointmentHandler.
func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param status query string false "Status filter"
// @Param participant_type query string false "Participant type filter"
// @Param priority query string false "Priority filter"
// @Param search query string false "Name or topic tag substring"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	filter := models.AppointmentFilter{
		Status:          models.AppointmentStatus(c.Query("status")),
		ParticipantType: models.ParticipantType(c.Query("participant_type")),
		Priority:        models.AppointmentPriority(c.Query("priority")),
		Search:          strings.TrimSpace(c.Query("search")),
	}
	for param, dest := range map[string]**time.Time{
		"date": &filter.Date,
		"from": &filter.From,
		"to":   &filter.To,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+param+" parameter"))
			return
		}
		*dest = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	appointments, pagination, err := h.appointments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, pagination)
}

// DayDetail godoc
// @Summary Appointments of one calendar date
// @Tags Calendar
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param search query string false "Name or topic tag substring"
// @Param status query string false "Status filter"
// @Param participant_type query string false "Participant type filter"
// @Param priority query string false "Priority filter"
// @Success 200 {object} response.Envelope
// @Router /calendar/appointments [get]
func (h *AppointmentHandler) DayDetail(c *gin.Context) {
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

	appointments, err := h.appointments.ListOnDate(c.Request.Context(), date,
		strings.TrimSpace(c.Query("search")),
		models.AppointmentStatus(c.Query("status")),
		models.ParticipantType(c.Query("participant_type")),
		models.AppointmentPriority(c.Query("priority")),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, nil)
}

// Get godoc
// @Summary Get appointment detail
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, err := h.appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Create godoc
// @Summary Schedule an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Duplicate-submission guard"
// @Param payload body service.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appointment payload"))
		return
	}
	appointment, err := h.appointments.Create(c.Request.Context(), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Update godoc
// @Summary Edit a planned appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.UpdateAppointmentRequest true "Partial appointment payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appointment payload"))
		return
	}
	appointment, err := h.appointments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Close godoc
// @Summary Close an appointment with its outcome
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.CloseAppointmentRequest true "Closure payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/close [post]
func (h *AppointmentHandler) Close(c *gin.Context) {
	var req service.CloseAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid closure payload"))
		return
	}
	result, err := h.appointments.Close(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

type followUpRequest struct {
	OffsetDays int `json:"offset_days"`
}

// FollowUp godoc
// @Summary Schedule a follow-up appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body followUpRequest false "Offset override"
// @Success 201 {object} response.Envelope
// @Router /appointments/{id}/follow-up [post]
func (h *AppointmentHandler) FollowUp(c *gin.Context) {
	var req followUpRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid follow-up payload"))
			return
		}
	}
	followUp, err := h.appointments.ScheduleFollowUp(c.Request.Context(), c.Param("id"), req.OffsetDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, followUp)
}

// Delete godoc
// @Summary Delete an appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
