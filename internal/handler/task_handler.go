package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rehberlik-api/internal/service"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
	"github.com/noah-isme/rehberlik-api/pkg/response"
)

// TaskHandler wires the task service to HTTP routes.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler constructs a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List godoc
// @Summary List appointment tasks
// @Tags Tasks
// @Produce json
// @Param appointment_id query string false "Scope to one appointment"
// @Success 200 {object} response.Envelope
// @Router /appointment-tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), c.Query("appointment_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Create godoc
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /appointment-tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Toggle godoc
// @Summary Toggle task completion
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.ToggleTaskRequest true "Completion flag"
// @Success 200 {object} response.Envelope
// @Router /appointment-tasks/{id} [patch]
func (h *TaskHandler) Toggle(c *gin.Context) {
	var req service.ToggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	task, err := h.tasks.Toggle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /appointment-tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	deleted, err := h.tasks.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
