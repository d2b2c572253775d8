package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

// Projector adapts one heterogeneous source into calendar events. The
// aggregator stays source-agnostic: adding a source means adding a projector.
type Projector interface {
	Kind() models.EventType
	Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error)
}

type calendarAppointmentSource interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
}

type calendarActivitySource interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]models.ClassActivity, error)
}

type calendarTaskSource interface {
	ListDueInRange(ctx context.Context, from, to time.Time) ([]models.AppointmentTask, error)
}

// AppointmentProjector projects appointments as timed events titled
// "{name} ({role label})", colored by status.
type AppointmentProjector struct {
	source calendarAppointmentSource
}

// NewAppointmentProjector constructs an AppointmentProjector.
func NewAppointmentProjector(source calendarAppointmentSource) *AppointmentProjector {
	return &AppointmentProjector{source: source}
}

func (p *AppointmentProjector) Kind() models.EventType { return models.EventAppointment }

func (p *AppointmentProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	appointments, err := p.source.ListInRange(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, len(appointments))
	for _, a := range appointments {
		events = append(events, models.CalendarEvent{
			ID:       a.ID,
			Date:     a.AppointmentDate.Format(dateLayout),
			Time:     a.StartTime,
			Title:    fmt.Sprintf("%s (%s)", a.ParticipantName, a.ParticipantType.Label()),
			Type:     models.EventAppointment,
			Status:   string(a.Status),
			Color:    a.Status.Color(),
			SourceID: a.ID,
		})
	}
	return events, nil
}

// ActivityProjector projects class activities titled "{class}: {topic}".
type ActivityProjector struct {
	source calendarActivitySource
}

// NewActivityProjector constructs an ActivityProjector.
func NewActivityProjector(source calendarActivitySource) *ActivityProjector {
	return &ActivityProjector{source: source}
}

func (p *ActivityProjector) Kind() models.EventType { return models.EventActivity }

func (p *ActivityProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	activities, err := p.source.ListInRange(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, len(activities))
	for _, act := range activities {
		event := models.CalendarEvent{
			ID:       act.ID,
			Date:     act.ActivityDate.Format(dateLayout),
			Title:    fmt.Sprintf("%s: %s", act.ClassKey, act.Topic),
			Type:     models.EventActivity,
			Color:    "#8b5cf6",
			SourceID: act.ID,
		}
		if act.StartTime != nil {
			event.Time = *act.StartTime
		}
		events = append(events, event)
	}
	return events, nil
}

// TaskProjector projects tasks due inside the window as untimed entries,
// colored by completion.
type TaskProjector struct {
	source calendarTaskSource
}

// NewTaskProjector constructs a TaskProjector.
func NewTaskProjector(source calendarTaskSource) *TaskProjector {
	return &TaskProjector{source: source}
}

func (p *TaskProjector) Kind() models.EventType { return models.EventTask }

func (p *TaskProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	tasks, err := p.source.ListDueInRange(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, len(tasks))
	for _, task := range tasks {
		color := "#eab308"
		status := "open"
		if task.IsCompleted {
			color = "#22c55e"
			status = "completed"
		}
		events = append(events, models.CalendarEvent{
			ID:       task.ID,
			Date:     task.DueDate.Format(dateLayout),
			Title:    task.TaskDescription,
			Type:     models.EventTask,
			Status:   status,
			Color:    color,
			SourceID: task.ID,
		})
	}
	return events, nil
}

// FollowUpProjector projects still-planned follow-up appointments as untimed
// reminder entries, alongside their timed appointment events.
type FollowUpProjector struct {
	source calendarAppointmentSource
}

// NewFollowUpProjector constructs a FollowUpProjector.
func NewFollowUpProjector(source calendarAppointmentSource) *FollowUpProjector {
	return &FollowUpProjector{source: source}
}

func (p *FollowUpProjector) Kind() models.EventType { return models.EventFollowUp }

func (p *FollowUpProjector) Fetch(ctx context.Context, window models.DateWindow) ([]models.CalendarEvent, error) {
	appointments, err := p.source.ListInRange(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	var events []models.CalendarEvent
	for _, a := range appointments {
		if a.Status != models.StatusPlanned || !a.IsFollowUp() {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:       "follow-up-" + a.ID,
			Date:     a.AppointmentDate.Format(dateLayout),
			Title:    fmt.Sprintf("Takip: %s", a.ParticipantName),
			Type:     models.EventFollowUp,
			Status:   string(a.Status),
			Color:    "#06b6d4",
			SourceID: a.ID,
		})
	}
	return events, nil
}
