package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

const taskColumns = `id, appointment_id, task_description, due_date, is_completed, created_at`

// TaskRepository persists appointment checklist items. The appointment_id
// reference is not cascading; orphaned tasks survive appointment deletion.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks in insertion order, optionally scoped to one appointment.
func (r *TaskRepository) List(ctx context.Context, appointmentID string) ([]models.AppointmentTask, error) {
	query := fmt.Sprintf("SELECT %s FROM appointment_tasks", taskColumns)
	var args []interface{}
	if appointmentID != "" {
		query += " WHERE appointment_id = $1"
		args = append(args, appointmentID)
	}
	query += " ORDER BY created_at ASC"

	var tasks []models.AppointmentTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListDueInRange returns tasks whose due date falls inside the window.
func (r *TaskRepository) ListDueInRange(ctx context.Context, from, to time.Time) ([]models.AppointmentTask, error) {
	query := fmt.Sprintf("SELECT %s FROM appointment_tasks WHERE due_date IS NOT NULL AND due_date >= $1 AND due_date <= $2 ORDER BY due_date ASC, created_at ASC", taskColumns)
	var tasks []models.AppointmentTask
	if err := r.db.SelectContext(ctx, &tasks, query, from, to); err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// FindByID fetches a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.AppointmentTask, error) {
	query := fmt.Sprintf("SELECT %s FROM appointment_tasks WHERE id = $1", taskColumns)
	var task models.AppointmentTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.AppointmentTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO appointment_tasks (id, appointment_id, task_description, due_date, is_completed, created_at)
		VALUES (:id, :appointment_id, :task_description, :due_date, :is_completed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// SetCompleted flips the completion flag and reports whether a row matched.
func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE appointment_tasks SET is_completed = $2 WHERE id = $1", id, completed)
	if err != nil {
		return false, fmt.Errorf("toggle task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle task rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a task and reports whether it existed.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM appointment_tasks WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task rows: %w", err)
	}
	return affected > 0, nil
}
