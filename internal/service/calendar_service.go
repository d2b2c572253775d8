package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/pkg/config"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type calendarCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CalendarService merges appointments, class activities, tasks and follow-up
// reminders into one ordered event stream per day/week/month view. Fetched
// source lists are cached per window; toggling a source is a pure filter over
// the cached lists and never re-fetches.
type CalendarService struct {
	projectors []Projector
	cache      calendarCache
	cfg        config.CalendarConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewCalendarService constructs a CalendarService over its source projectors.
// metrics may be nil.
func NewCalendarService(projectors []Projector, cache calendarCache, cfg config.CalendarConfig, metrics *MetricsService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{projectors: projectors, cache: cache, cfg: cfg, metrics: metrics, logger: logger}
}

// Window computes the fetch range for a navigated anchor date. Day is the
// single date, week the Monday-start seven days containing the anchor, and
// month the full calendar month padded a week on each side to cover partial
// display weeks.
func Window(anchor time.Time, view models.CalendarView) models.DateWindow {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	switch view {
	case models.ViewWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return models.DateWindow{From: start, To: start.AddDate(0, 0, 6)}
	case models.ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return models.DateWindow{From: first.AddDate(0, 0, -7), To: last.AddDate(0, 0, 7)}
	default:
		return models.DateWindow{From: day, To: day}
	}
}

// View returns the merged, ordered event stream for the anchor date and
// granularity with the given source toggles applied.
func (s *CalendarService) View(ctx context.Context, anchor time.Time, view models.CalendarView, toggles models.SourceToggles) ([]models.CalendarEvent, models.DateWindow, error) {
	if !view.Valid() {
		return nil, models.DateWindow{}, appErrors.Clone(appErrors.ErrValidation, "view must be day, week or month")
	}
	window := Window(anchor, view)

	lists := make(map[models.EventType][]models.CalendarEvent, len(s.projectors))
	for _, projector := range s.projectors {
		events, err := s.fetchSource(ctx, projector, window)
		if err != nil {
			return nil, window, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar sources")
		}
		lists[projector.Kind()] = events
	}

	return MergeEvents(lists, toggles), window, nil
}

// EventsForDate returns the merged events of exactly one date, used by the
// calendar detail panels.
func (s *CalendarService) EventsForDate(ctx context.Context, date time.Time) ([]models.CalendarEvent, error) {
	events, _, err := s.View(ctx, date, models.ViewDay, models.AllSources())
	if err != nil {
		return nil, err
	}
	day := date.Format(dateLayout)
	out := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if event.Date == day {
			out = append(out, event)
		}
	}
	return out, nil
}

// fetchSource serves one source list from the window cache, falling back to
// the projector on a miss. Cache failures are logged and degrade to a fetch.
func (s *CalendarService) fetchSource(ctx context.Context, projector Projector, window models.DateWindow) ([]models.CalendarEvent, error) {
	key := fmt.Sprintf("calendar:%s:%s:%s", projector.Kind(), window.From.Format(dateLayout), window.To.Format(dateLayout))

	if s.cache != nil {
		var cached []models.CalendarEvent
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.metrics.ObserveCacheLookup(true)
			return cached, nil
		}
		s.metrics.ObserveCacheLookup(false)
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("calendar cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	events, err := projector.Fetch(ctx, window)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, events, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("calendar cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return events, nil
}

// MergeEvents is the pure aggregation step: it concatenates the source lists
// that pass the toggles and sorts them for display by date, timed entries
// before untimed ones, then time and title. Stable, so equal slots keep
// source order.
func MergeEvents(lists map[models.EventType][]models.CalendarEvent, toggles models.SourceToggles) []models.CalendarEvent {
	merged := make([]models.CalendarEvent, 0)
	for _, kind := range []models.EventType{models.EventAppointment, models.EventActivity, models.EventTask, models.EventFollowUp} {
		if !toggles.Enabled(kind) {
			continue
		}
		merged = append(merged, lists[kind]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if (a.Time == "") != (b.Time == "") {
			return a.Time != ""
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Title < b.Title
	})
	return merged
}
