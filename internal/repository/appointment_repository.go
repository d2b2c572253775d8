package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

// ErrStaleVersion is returned when a guarded write matched no row because the
// record moved on under the caller.
var ErrStaleVersion = errors.New("stale appointment version")

const appointmentColumns = `id, version, participant_type, participant_name, participant_class, appointment_date, start_time, duration_minutes, location, topic_tags, purpose, preparation_note, priority, status, outcome_summary, outcome_decision, next_action, created_at, updated_at`

// AppointmentRepository owns persistence of appointment records. No other
// component writes to the appointments table.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments matching the filter along with the total count,
// ordered by date and start time ascending with creation order as tie-break.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("appointment_date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	} else {
		if filter.From != nil {
			conditions = append(conditions, fmt.Sprintf("appointment_date >= $%d", len(args)+1))
			args = append(args, *filter.From)
		}
		if filter.To != nil {
			conditions = append(conditions, fmt.Sprintf("appointment_date <= $%d", len(args)+1))
			args = append(args, *filter.To)
		}
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}
	if filter.ParticipantType != "" {
		conditions = append(conditions, fmt.Sprintf("participant_type = $%d", len(args)+1))
		args = append(args, string(filter.ParticipantType))
	}
	if filter.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, string(filter.Priority))
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(participant_name) LIKE $%d OR LOWER(array_to_string(topic_tags, ' ')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY appointment_date ASC, start_time ASC, created_at ASC LIMIT %d OFFSET %d", appointmentColumns, base, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appointments, total, nil
}

// FindByID fetches an appointment by ID.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListInRange returns every appointment dated inside the window, unpaginated,
// for calendar aggregation.
func (r *AppointmentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE appointment_date >= $1 AND appointment_date <= $2 ORDER BY appointment_date ASC, start_time ASC, created_at ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, from, to); err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return appointments, nil
}

// FindPlannedOnDate returns still-planned appointments on the given date,
// used by the overlap policy check.
func (r *AppointmentRepository) FindPlannedOnDate(ctx context.Context, date time.Time, excludeID string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE appointment_date = $1 AND status = $2", appointmentColumns)
	args := []interface{}{date, string(models.StatusPlanned)}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query+" ORDER BY start_time ASC", args...); err != nil {
		return nil, fmt.Errorf("find planned appointments: %w", err)
	}
	return appointments, nil
}

// Create inserts a new appointment record.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.Version == 0 {
		appointment.Version = 1
	}
	if appointment.TopicTags == nil {
		appointment.TopicTags = []string{}
	}
	if appointment.OutcomeDecision == nil {
		appointment.OutcomeDecision = []string{}
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now

	const query = `INSERT INTO appointments (id, version, participant_type, participant_name, participant_class, appointment_date, start_time, duration_minutes, location, topic_tags, purpose, preparation_note, priority, status, outcome_summary, outcome_decision, next_action, created_at, updated_at)
		VALUES (:id, :version, :participant_type, :participant_name, :participant_class, :appointment_date, :start_time, :duration_minutes, :location, :topic_tags, :purpose, :preparation_note, :priority, :status, :outcome_summary, :outcome_decision, :next_action, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Update persists the appointment guarded by its loaded version. The write
// matches only while the stored version equals the one the caller read, so a
// concurrent writer surfaces as ErrStaleVersion instead of a silent
// last-write-wins overwrite.
func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()
	if appointment.TopicTags == nil {
		appointment.TopicTags = []string{}
	}
	if appointment.OutcomeDecision == nil {
		appointment.OutcomeDecision = []string{}
	}

	const query = `UPDATE appointments SET version = version + 1, participant_type = :participant_type, participant_name = :participant_name,
		participant_class = :participant_class, appointment_date = :appointment_date, start_time = :start_time, duration_minutes = :duration_minutes,
		location = :location, topic_tags = :topic_tags, purpose = :purpose, preparation_note = :preparation_note, priority = :priority,
		status = :status, outcome_summary = :outcome_summary, outcome_decision = :outcome_decision, next_action = :next_action, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	result, err := r.db.NamedExecContext(ctx, query, appointment)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment rows: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	appointment.Version++
	return nil
}

// Delete removes an appointment. Deleting an absent id is a no-op.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
