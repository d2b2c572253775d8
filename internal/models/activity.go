package models

import "time"

// ClassActivity is a class-level guidance activity shown on the calendar
// alongside appointments.
type ClassActivity struct {
	ID           string    `db:"id" json:"id"`
	ClassKey     string    `db:"class_key" json:"class_key"`
	Topic        string    `db:"topic" json:"topic"`
	ActivityDate time.Time `db:"activity_date" json:"activity_date"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
