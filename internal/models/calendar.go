package models

import "time"

// CalendarView selects the aggregation granularity.
type CalendarView string

const (
	ViewDay   CalendarView = "day"
	ViewWeek  CalendarView = "week"
	ViewMonth CalendarView = "month"
)

// Valid reports whether the view is a known granularity.
func (v CalendarView) Valid() bool {
	switch v {
	case ViewDay, ViewWeek, ViewMonth:
		return true
	}
	return false
}

// EventType identifies which source a calendar event was projected from.
type EventType string

const (
	EventAppointment EventType = "appointment"
	EventActivity    EventType = "activity"
	EventTask        EventType = "task"
	EventFollowUp    EventType = "follow_up"
)

// DateWindow is the inclusive fetch range for one calendar view.
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether the day falls inside the window.
func (w DateWindow) Contains(day time.Time) bool {
	return !day.Before(w.From) && !day.After(w.To)
}

// SourceToggles switches calendar sources on and off. Toggling filters
// already-fetched events and never triggers a re-fetch.
type SourceToggles struct {
	Appointments bool `json:"appointments"`
	Activities   bool `json:"activities"`
	Tasks        bool `json:"tasks"`
	FollowUps    bool `json:"follow_ups"`
}

// AllSources returns toggles with every source enabled.
func AllSources() SourceToggles {
	return SourceToggles{Appointments: true, Activities: true, Tasks: true, FollowUps: true}
}

// Enabled reports whether events of the given type pass the toggles.
func (t SourceToggles) Enabled(kind EventType) bool {
	switch kind {
	case EventAppointment:
		return t.Appointments
	case EventActivity:
		return t.Activities
	case EventTask:
		return t.Tasks
	case EventFollowUp:
		return t.FollowUps
	}
	return false
}

// CalendarEvent is the derived, never-persisted projection every calendar
// source maps into. Date is "2006-01-02"; Time is "15:04" or empty for
// untimed entries, which render without a fixed slot and sort last.
type CalendarEvent struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	Time     string    `json:"time,omitempty"`
	Title    string    `json:"title"`
	Type     EventType `json:"type"`
	Status   string    `json:"status,omitempty"`
	Color    string    `json:"color"`
	SourceID string    `json:"source_id"`
}
