package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rehberlik-api/internal/service"
	"github.com/noah-isme/rehberlik-api/pkg/response"
)

// RosterHandler exposes the read-only roster and teacher directory.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs a new RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Classes godoc
// @Summary List roster classes
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *RosterHandler) Classes(c *gin.Context) {
	classes, err := h.roster.Classes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Students godoc
// @Summary List students of a class
// @Tags Roster
// @Produce json
// @Param class query string true "Class key"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) Students(c *gin.Context) {
	students, err := h.roster.Students(c.Request.Context(), c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Teachers godoc
// @Summary List the teacher directory
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *RosterHandler) Teachers(c *gin.Context) {
	teachers, err := h.roster.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
