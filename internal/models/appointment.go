package models

import (
	"time"

	"github.com/lib/pq"
)

// ParticipantType identifies who the counselor meets with.
type ParticipantType string

const (
	ParticipantStudent ParticipantType = "student"
	ParticipantParent  ParticipantType = "parent"
	ParticipantTeacher ParticipantType = "teacher"
)

// Valid reports whether the participant type is a known value.
func (p ParticipantType) Valid() bool {
	switch p {
	case ParticipantStudent, ParticipantParent, ParticipantTeacher:
		return true
	}
	return false
}

// Label returns the display label used in calendar titles.
func (p ParticipantType) Label() string {
	switch p {
	case ParticipantStudent:
		return "Öğrenci"
	case ParticipantParent:
		return "Veli"
	case ParticipantTeacher:
		return "Öğretmen"
	}
	return string(p)
}

// AppointmentStatus tracks the lifecycle of an appointment.
type AppointmentStatus string

const (
	StatusPlanned     AppointmentStatus = "planned"
	StatusAttended    AppointmentStatus = "attended"
	StatusNotAttended AppointmentStatus = "not_attended"
	StatusPostponed   AppointmentStatus = "postponed"
	StatusCancelled   AppointmentStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusAttended, StatusNotAttended, StatusPostponed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status is a closure outcome. Every status
// except planned is terminal; closure is the only way out of planned.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && s != StatusPlanned
}

// Color returns the calendar color associated with the status.
func (s AppointmentStatus) Color() string {
	switch s {
	case StatusPlanned:
		return "#3b82f6"
	case StatusAttended:
		return "#22c55e"
	case StatusNotAttended:
		return "#ef4444"
	case StatusPostponed:
		return "#f59e0b"
	case StatusCancelled:
		return "#9ca3af"
	}
	return "#6b7280"
}

// AppointmentPriority ranks how pressing an appointment is.
type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "low"
	PriorityNormal AppointmentPriority = "normal"
	PriorityHigh   AppointmentPriority = "high"
	PriorityUrgent AppointmentPriority = "urgent"
)

// Valid reports whether the priority is a known value.
func (p AppointmentPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AppointmentLocation enumerates the fixed set of meeting venues.
type AppointmentLocation string

const (
	LocationCounselingOffice AppointmentLocation = "counseling_office"
	LocationClassroom        AppointmentLocation = "classroom"
	LocationMeetingRoom      AppointmentLocation = "meeting_room"
	LocationLibrary          AppointmentLocation = "library"
	LocationOnline           AppointmentLocation = "online"
)

// Valid reports whether the location is a known venue.
func (l AppointmentLocation) Valid() bool {
	switch l {
	case LocationCounselingOffice, LocationClassroom, LocationMeetingRoom, LocationLibrary, LocationOnline:
		return true
	}
	return false
}

// FollowUpPrefix marks the purpose of auto-scheduled follow-up appointments.
// Follow-ups carry no stored link back to the appointment that spawned them.
const FollowUpPrefix = "Follow-up - "

// Appointment represents a scheduled guidance-counseling meeting.
type Appointment struct {
	ID               string              `db:"id" json:"id"`
	Version          int                 `db:"version" json:"version"`
	ParticipantType  ParticipantType     `db:"participant_type" json:"participant_type"`
	ParticipantName  string              `db:"participant_name" json:"participant_name"`
	ParticipantClass *string             `db:"participant_class" json:"participant_class,omitempty"`
	AppointmentDate  time.Time           `db:"appointment_date" json:"appointment_date"`
	StartTime        string              `db:"start_time" json:"start_time"`
	DurationMinutes  int                 `db:"duration_minutes" json:"duration_minutes"`
	Location         AppointmentLocation `db:"location" json:"location"`
	TopicTags        pq.StringArray      `db:"topic_tags" json:"topic_tags"`
	Purpose          *string             `db:"purpose" json:"purpose,omitempty"`
	PreparationNote  *string             `db:"preparation_note" json:"preparation_note,omitempty"`
	Priority         AppointmentPriority `db:"priority" json:"priority"`
	Status           AppointmentStatus   `db:"status" json:"status"`
	OutcomeSummary   *string             `db:"outcome_summary" json:"outcome_summary,omitempty"`
	OutcomeDecision  pq.StringArray      `db:"outcome_decision" json:"outcome_decision"`
	NextAction       *string             `db:"next_action" json:"next_action,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
}

// IsFollowUp reports whether the appointment was spawned by the follow-up
// scheduler, recognisable only by its purpose prefix.
func (a *Appointment) IsFollowUp() bool {
	return a.Purpose != nil && len(*a.Purpose) >= len(FollowUpPrefix) && (*a.Purpose)[:len(FollowUpPrefix)] == FollowUpPrefix
}

// AppointmentFilter narrows down appointment listings.
type AppointmentFilter struct {
	Date            *time.Time
	From            *time.Time
	To              *time.Time
	Status          AppointmentStatus
	ParticipantType ParticipantType
	Priority        AppointmentPriority
	Search          string
	Page            int
	PageSize        int
}
