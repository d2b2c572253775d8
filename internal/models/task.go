package models

import "time"

// AppointmentTask is a checklist item attached to one appointment. Tasks have
// no state machine beyond the completion flag and are never auto-created.
type AppointmentTask struct {
	ID              string     `db:"id" json:"id"`
	AppointmentID   string     `db:"appointment_id" json:"appointment_id"`
	TaskDescription string     `db:"task_description" json:"task_description"`
	DueDate         *time.Time `db:"due_date" json:"due_date,omitempty"`
	IsCompleted     bool       `db:"is_completed" json:"is_completed"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
