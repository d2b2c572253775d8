package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

const activityColumns = `id, class_key, topic, activity_date, start_time, notes, created_at, updated_at`

// ActivityRepository persists class guidance activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListInRange returns activities dated inside the window.
func (r *ActivityRepository) ListInRange(ctx context.Context, from, to time.Time) ([]models.ClassActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM class_activities WHERE activity_date >= $1 AND activity_date <= $2 ORDER BY activity_date ASC, start_time ASC NULLS LAST", activityColumns)
	var activities []models.ClassActivity
	if err := r.db.SelectContext(ctx, &activities, query, from, to); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// FindByID fetches an activity by ID.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.ClassActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM class_activities WHERE id = $1", activityColumns)
	var activity models.ClassActivity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.ClassActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now

	const query = `INSERT INTO class_activities (id, class_key, topic, activity_date, start_time, notes, created_at, updated_at)
		VALUES (:id, :class_key, :topic, :activity_date, :start_time, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update modifies an existing activity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.ClassActivity) error {
	activity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_activities SET class_key = :class_key, topic = :topic, activity_date = :activity_date,
		start_time = :start_time, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes an activity. Deleting an absent id is a no-op.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM class_activities WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
