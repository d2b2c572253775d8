package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rehberlik-api/internal/models"
	"github.com/noah-isme/rehberlik-api/internal/repository"
	"github.com/noah-isme/rehberlik-api/pkg/config"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	idempotencyKeyPrefix = "appointments:idem:"
	idempotencyPending   = "pending"
	calendarCachePattern = "calendar:*"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	FindPlannedOnDate(ctx context.Context, date time.Time, excludeID string) ([]models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Update(ctx context.Context, appointment *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

type schedulingCache interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateAppointmentRequest represents payload for scheduling an appointment.
type CreateAppointmentRequest struct {
	ParticipantType  string   `json:"participant_type" validate:"required"`
	ParticipantName  string   `json:"participant_name" validate:"required"`
	ParticipantClass *string  `json:"participant_class" validate:"omitempty,max=50"`
	AppointmentDate  string   `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	StartTime        string   `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes  int      `json:"duration_minutes" validate:"required,min=1"`
	Location         string   `json:"location" validate:"required"`
	TopicTags        []string `json:"topic_tags"`
	Purpose          *string  `json:"purpose"`
	PreparationNote  *string  `json:"preparation_note"`
	Priority         string   `json:"priority"`
}

// UpdateAppointmentRequest represents a free edit of a still-planned
// appointment. Only provided fields are merged.
type UpdateAppointmentRequest struct {
	ParticipantType  *string  `json:"participant_type"`
	ParticipantName  *string  `json:"participant_name"`
	ParticipantClass *string  `json:"participant_class"`
	AppointmentDate  *string  `json:"appointment_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime        *string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	DurationMinutes  *int     `json:"duration_minutes" validate:"omitempty,min=1"`
	Location         *string  `json:"location"`
	TopicTags        []string `json:"topic_tags"`
	Purpose          *string  `json:"purpose"`
	PreparationNote  *string  `json:"preparation_note"`
	Priority         *string  `json:"priority"`
	// ExpectedVersion opts into optimistic concurrency; zero means
	// last-write-wins for callers that never read a version.
	ExpectedVersion int `json:"expected_version"`
}

// CloseAppointmentRequest records the real-world outcome of a planned
// appointment and moves it to a terminal status.
type CloseAppointmentRequest struct {
	Status          string   `json:"status" validate:"required"`
	OutcomeSummary  *string  `json:"outcome_summary"`
	OutcomeDecision []string `json:"outcome_decision"`
	NextAction      *string  `json:"next_action"`
	CreateFollowUp  bool     `json:"create_follow_up"`
	ExpectedVersion int      `json:"expected_version"`
}

// CloseResult reports the closed appointment and, when requested and
// successful, the follow-up that was scheduled.
type CloseResult struct {
	Appointment *models.Appointment `json:"appointment"`
	FollowUp    *models.Appointment `json:"follow_up,omitempty"`
}

// AppointmentService owns the appointment store operations and the lifecycle
// state machine: planned is the single initial state and the closure
// operation is the only transition out of it.
type AppointmentService struct {
	repo      appointmentRepository
	cache     schedulingCache
	cfg       config.SchedulingConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(repo appointmentRepository, cache schedulingCache, cfg config.SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FollowUpOffsetDays <= 0 {
		cfg.FollowUpOffsetDays = 7
	}
	return &AppointmentService{repo: repo, cache: cache, cfg: cfg, validator: validate, logger: logger}
}

// List returns appointments plus pagination data, ordered by date and start
// time ascending.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	if filter.ParticipantType != "" && !filter.ParticipantType.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown participant_type filter")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority filter")
	}

	appointments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return appointments, pagination, nil
}

// ListOnDate backs the calendar day detail panel: it loads the date's
// appointments once and narrows them in memory through the filter predicates,
// so the panel's narrowing never issues another query.
func (s *AppointmentService) ListOnDate(ctx context.Context, date time.Time, query string, status models.AppointmentStatus, participantType models.ParticipantType, priority models.AppointmentPriority) ([]models.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	if participantType != "" && !participantType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown participant_type filter")
	}
	if priority != "" && !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority filter")
	}

	appointments, err := s.repo.ListInRange(ctx, date, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return FilterAppointments(appointments,
		MatchText(query),
		MatchStatus(status),
		MatchParticipantType(participantType),
		MatchPriority(priority),
	), nil
}

// Get returns an appointment by id.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appointment, nil
}

// Create schedules a new appointment with status planned. An optional
// idempotency key guards against duplicate submissions: a replay within the
// key's TTL returns the appointment the first call created.
func (s *AppointmentService) Create(ctx context.Context, req CreateAppointmentRequest, idempotencyKey string) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}
	if strings.TrimSpace(req.ParticipantName) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "participant_name is required")
	}

	participantType := models.ParticipantType(req.ParticipantType)
	if !participantType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown participant_type")
	}
	location := models.AppointmentLocation(req.Location)
	if !location.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown location")
	}
	priority := models.PriorityNormal
	if req.Priority != "" {
		priority = models.AppointmentPriority(req.Priority)
		if !priority.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
		}
	}

	date, err := time.ParseInLocation(dateLayout, req.AppointmentDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid appointment_date")
	}

	var reservedKey string
	if idempotencyKey != "" && s.cache != nil {
		key := idempotencyKeyPrefix + idempotencyKey
		reserved, err := s.cache.SetNX(ctx, key, idempotencyPending, s.cfg.IdempotencyTTL)
		if err != nil {
			s.logger.Warn("idempotency reservation failed", zap.Error(err))
		} else if !reserved {
			stored, err := s.cache.GetString(ctx, key)
			if err == nil && stored != "" && stored != idempotencyPending {
				return s.Get(ctx, stored)
			}
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate submission")
		} else {
			reservedKey = key
		}
	}

	if err := s.checkOverlap(ctx, date, req.StartTime, req.DurationMinutes, ""); err != nil {
		s.releaseIdempotency(ctx, reservedKey)
		return nil, err
	}

	appointment := &models.Appointment{
		ParticipantType:  participantType,
		ParticipantName:  strings.TrimSpace(req.ParticipantName),
		ParticipantClass: normalizeOptional(req.ParticipantClass),
		AppointmentDate:  date,
		StartTime:        req.StartTime,
		DurationMinutes:  req.DurationMinutes,
		Location:         location,
		TopicTags:        req.TopicTags,
		Purpose:          normalizeOptional(req.Purpose),
		PreparationNote:  normalizeOptional(req.PreparationNote),
		Priority:         priority,
		Status:           models.StatusPlanned,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		s.releaseIdempotency(ctx, reservedKey)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}

	if idempotencyKey != "" && s.cache != nil {
		if err := s.cache.SetString(ctx, idempotencyKeyPrefix+idempotencyKey, appointment.ID, s.cfg.IdempotencyTTL); err != nil {
			s.logger.Warn("idempotency record failed", zap.Error(err))
		}
	}
	s.invalidateCalendar(ctx)

	return appointment, nil
}

// Update applies a free edit to a still-planned appointment; closed
// appointments are immutable outside the closure workflow.
func (s *AppointmentService) Update(ctx context.Context, id string, req UpdateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	appointment, err := s.loadForWrite(ctx, id, req.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusPlanned {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "only planned appointments can be edited")
	}

	if req.ParticipantType != nil {
		participantType := models.ParticipantType(*req.ParticipantType)
		if !participantType.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown participant_type")
		}
		appointment.ParticipantType = participantType
	}
	if req.ParticipantName != nil {
		name := strings.TrimSpace(*req.ParticipantName)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "participant_name is required")
		}
		appointment.ParticipantName = name
	}
	if req.ParticipantClass != nil {
		appointment.ParticipantClass = normalizeOptional(req.ParticipantClass)
	}
	if req.AppointmentDate != nil {
		date, err := time.ParseInLocation(dateLayout, *req.AppointmentDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid appointment_date")
		}
		appointment.AppointmentDate = date
	}
	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		appointment.DurationMinutes = *req.DurationMinutes
	}
	if req.Location != nil {
		location := models.AppointmentLocation(*req.Location)
		if !location.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown location")
		}
		appointment.Location = location
	}
	if req.TopicTags != nil {
		appointment.TopicTags = req.TopicTags
	}
	if req.Purpose != nil {
		appointment.Purpose = normalizeOptional(req.Purpose)
	}
	if req.PreparationNote != nil {
		appointment.PreparationNote = normalizeOptional(req.PreparationNote)
	}
	if req.Priority != nil {
		priority := models.AppointmentPriority(*req.Priority)
		if !priority.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
		}
		appointment.Priority = priority
	}

	if req.AppointmentDate != nil || req.StartTime != nil || req.DurationMinutes != nil {
		if err := s.checkOverlap(ctx, appointment.AppointmentDate, appointment.StartTime, appointment.DurationMinutes, appointment.ID); err != nil {
			return nil, err
		}
	}

	if err := s.persist(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Close runs the closure workflow: exactly one transition from planned to a
// terminal status, persisting outcome fields unconditionally. When the
// resulting status is attended and a follow-up was requested, the follow-up
// is scheduled best-effort; its failure never unwinds the closure.
func (s *AppointmentService) Close(ctx context.Context, id string, req CloseAppointmentRequest) (*CloseResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closure payload")
	}
	status := models.AppointmentStatus(req.Status)
	if !status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "closure status must be attended, not_attended, postponed or cancelled")
	}

	appointment, err := s.loadForWrite(ctx, id, req.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusPlanned {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "appointment is already closed")
	}

	appointment.Status = status
	appointment.OutcomeSummary = normalizeOptional(req.OutcomeSummary)
	appointment.OutcomeDecision = req.OutcomeDecision
	appointment.NextAction = normalizeOptional(req.NextAction)

	if err := s.persist(ctx, appointment); err != nil {
		return nil, err
	}

	result := &CloseResult{Appointment: appointment}
	if status == models.StatusAttended && req.CreateFollowUp {
		followUp, err := s.ScheduleFollowUp(ctx, id, 0)
		if err != nil {
			s.logger.Warn("follow-up scheduling failed after closure",
				zap.String("appointment_id", id), zap.Error(err))
		} else {
			result.FollowUp = followUp
		}
	}
	return result, nil
}

// ScheduleFollowUp creates a new planned appointment offset from the given
// one, copying its slot and participant fields. The new row stores no link
// back to its origin.
func (s *AppointmentService) ScheduleFollowUp(ctx context.Context, id string, offsetDays int) (*models.Appointment, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if offsetDays <= 0 {
		offsetDays = s.cfg.FollowUpOffsetDays
	}

	purpose := models.FollowUpPrefix
	if original.Purpose != nil {
		purpose += *original.Purpose
	}

	followUp := &models.Appointment{
		ParticipantType:  original.ParticipantType,
		ParticipantName:  original.ParticipantName,
		ParticipantClass: original.ParticipantClass,
		AppointmentDate:  original.AppointmentDate.AddDate(0, 0, offsetDays),
		StartTime:        original.StartTime,
		DurationMinutes:  original.DurationMinutes,
		Location:         original.Location,
		TopicTags:        original.TopicTags,
		Purpose:          &purpose,
		Priority:         original.Priority,
		Status:           models.StatusPlanned,
	}
	if err := s.checkOverlap(ctx, followUp.AppointmentDate, followUp.StartTime, followUp.DurationMinutes, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, followUp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create follow-up appointment")
	}
	s.invalidateCalendar(ctx)
	return followUp, nil
}

// Delete removes an appointment. Deletion is idempotent: removing an absent
// id succeeds.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointment")
	}
	s.invalidateCalendar(ctx)
	return nil
}

func (s *AppointmentService) loadForWrite(ctx context.Context, id string, expectedVersion int) (*models.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && appointment.Version != expectedVersion {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "appointment was modified by another request")
	}
	return appointment, nil
}

func (s *AppointmentService) persist(ctx context.Context, appointment *models.Appointment) error {
	if err := s.repo.Update(ctx, appointment); err != nil {
		if err == repository.ErrStaleVersion {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "appointment was modified by another request")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}
	s.invalidateCalendar(ctx)
	return nil
}

// checkOverlap enforces the slot policy. Overlap is allowed by default;
// deployments that disable it get a CONFLICT when the requested slot
// intersects another planned appointment on the same date.
func (s *AppointmentService) checkOverlap(ctx context.Context, date time.Time, startTime string, durationMinutes int, excludeID string) error {
	if s.cfg.AllowOverlap {
		return nil
	}
	existing, err := s.repo.FindPlannedOnDate(ctx, date, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot availability")
	}
	start := minutesOfDay(startTime)
	end := start + durationMinutes
	for _, other := range existing {
		otherStart := minutesOfDay(other.StartTime)
		otherEnd := otherStart + other.DurationMinutes
		if start < otherEnd && otherStart < end {
			return appErrors.Clone(appErrors.ErrConflict, "slot overlaps an existing appointment")
		}
	}
	return nil
}

// releaseIdempotency frees a reservation whose create never completed so the
// client can retry with the same key instead of waiting out the TTL.
func (s *AppointmentService) releaseIdempotency(ctx context.Context, key string) {
	if key == "" || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AppointmentService) invalidateCalendar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, calendarCachePattern); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}

func minutesOfDay(hhmm string) int {
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
