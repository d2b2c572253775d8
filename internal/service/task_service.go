package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rehberlik-api/internal/models"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type taskRepository interface {
	List(ctx context.Context, appointmentID string) ([]models.AppointmentTask, error)
	FindByID(ctx context.Context, id string) (*models.AppointmentTask, error)
	Create(ctx context.Context, task *models.AppointmentTask) error
	SetCompleted(ctx context.Context, id string, completed bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type taskAppointmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
}

type taskCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateTaskRequest represents payload for creating a checklist item.
type CreateTaskRequest struct {
	AppointmentID   string  `json:"appointment_id" validate:"required"`
	TaskDescription string  `json:"task_description" validate:"required"`
	DueDate         *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// ToggleTaskRequest flips a task's completion flag.
type ToggleTaskRequest struct {
	IsCompleted bool `json:"is_completed"`
}

// TaskService manages appointment checklist items. Tasks are independent of
// the appointment lifecycle; a closed appointment keeps its open tasks.
type TaskService struct {
	repo         taskRepository
	appointments taskAppointmentReader
	cache        taskCache
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(repo taskRepository, appointments taskAppointmentReader, cache taskCache, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, appointments: appointments, cache: cache, validator: validate, logger: logger}
}

// List returns tasks in insertion order, optionally scoped to an appointment.
func (s *TaskService) List(ctx context.Context, appointmentID string) ([]models.AppointmentTask, error) {
	tasks, err := s.repo.List(ctx, appointmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Create attaches a new task to an existing appointment.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*models.AppointmentTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if strings.TrimSpace(req.TaskDescription) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task_description is required")
	}

	if _, err := s.appointments.FindByID(ctx, req.AppointmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	task := &models.AppointmentTask{
		AppointmentID:   req.AppointmentID,
		TaskDescription: strings.TrimSpace(req.TaskDescription),
	}
	if req.DueDate != nil {
		due, err := time.ParseInLocation(dateLayout, *req.DueDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due_date")
		}
		task.DueDate = &due
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	s.invalidateCalendar(ctx)
	return task, nil
}

// Toggle sets the completion flag and returns the updated task.
func (s *TaskService) Toggle(ctx context.Context, id string, req ToggleTaskRequest) (*models.AppointmentTask, error) {
	matched, err := s.repo.SetCompleted(ctx, id, req.IsCompleted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle task")
	}
	if !matched {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	s.invalidateCalendar(ctx)
	return task, nil
}

// Delete removes a task and reports whether it existed.
func (s *TaskService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	if deleted {
		s.invalidateCalendar(ctx)
	}
	return deleted, nil
}

func (s *TaskService) invalidateCalendar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, calendarCachePattern); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}
