package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

// AppointmentPredicate is one condition in the in-memory filter pipeline
// applied over an already date-windowed appointment list.
type AppointmentPredicate func(models.Appointment) bool

// MatchText matches the query as a case-insensitive substring of the
// participant name or any topic tag. An empty query passes everything.
func MatchText(query string) AppointmentPredicate {
	needle := strings.ToLower(strings.TrimSpace(query))
	return func(a models.Appointment) bool {
		if needle == "" {
			return true
		}
		if strings.Contains(strings.ToLower(a.ParticipantName), needle) {
			return true
		}
		for _, tag := range a.TopicTags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	}
}

// MatchStatus passes appointments with exactly the given status; the zero
// value passes everything.
func MatchStatus(status models.AppointmentStatus) AppointmentPredicate {
	return func(a models.Appointment) bool {
		return status == "" || a.Status == status
	}
}

// MatchParticipantType passes appointments with the given participant type;
// the zero value passes everything.
func MatchParticipantType(participantType models.ParticipantType) AppointmentPredicate {
	return func(a models.Appointment) bool {
		return participantType == "" || a.ParticipantType == participantType
	}
}

// MatchPriority passes appointments with the given priority; the zero value
// passes everything.
func MatchPriority(priority models.AppointmentPriority) AppointmentPredicate {
	return func(a models.Appointment) bool {
		return priority == "" || a.Priority == priority
	}
}

// FilterAppointments AND-combines the predicates over the list and returns
// the matches sorted by start time ascending. The input is not mutated.
func FilterAppointments(appointments []models.Appointment, predicates ...AppointmentPredicate) []models.Appointment {
	out := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		keep := true
		for _, p := range predicates {
			if !p(a) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, a)
		}
	}
	SortAppointments(out)
	return out
}

// SortAppointments orders by date, then start time, then creation order.
func SortAppointments(appointments []models.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]
		if !a.AppointmentDate.Equal(b.AppointmentDate) {
			return a.AppointmentDate.Before(b.AppointmentDate)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
