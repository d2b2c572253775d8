package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rehberlik-api/internal/models"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type activityRepository interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]models.ClassActivity, error)
	FindByID(ctx context.Context, id string) (*models.ClassActivity, error)
	Create(ctx context.Context, activity *models.ClassActivity) error
	Update(ctx context.Context, activity *models.ClassActivity) error
	Delete(ctx context.Context, id string) error
}

// ActivityRequest describes create and update payloads for class activities.
type ActivityRequest struct {
	ClassKey     string  `json:"class_key" validate:"required"`
	Topic        string  `json:"topic" validate:"required"`
	ActivityDate string  `json:"activity_date" validate:"required,datetime=2006-01-02"`
	StartTime    *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	Notes        *string `json:"notes"`
}

// ActivityService manages class guidance activities, the calendar's second
// event source.
type ActivityService struct {
	repo      activityRepository
	cache     taskCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, cache taskCache, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns activities inside the date range.
func (s *ActivityService) List(ctx context.Context, from, to time.Time) ([]models.ClassActivity, error) {
	activities, err := s.repo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// Create registers a new class activity.
func (s *ActivityService) Create(ctx context.Context, req ActivityRequest) (*models.ClassActivity, error) {
	activity := &models.ClassActivity{}
	if err := s.apply(activity, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	s.invalidateCalendar(ctx)
	return activity, nil
}

// Update modifies an existing class activity.
func (s *ActivityService) Update(ctx context.Context, id string, req ActivityRequest) (*models.ClassActivity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if err := s.apply(activity, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	s.invalidateCalendar(ctx)
	return activity, nil
}

// Delete removes an activity; removing an absent id succeeds.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.invalidateCalendar(ctx)
	return nil
}

func (s *ActivityService) apply(activity *models.ClassActivity, req ActivityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	date, err := time.ParseInLocation(dateLayout, req.ActivityDate, time.UTC)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid activity_date")
	}
	activity.ClassKey = strings.TrimSpace(req.ClassKey)
	activity.Topic = strings.TrimSpace(req.Topic)
	activity.ActivityDate = date
	activity.StartTime = req.StartTime
	activity.Notes = normalizeOptional(req.Notes)
	return nil
}

func (s *ActivityService) invalidateCalendar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, calendarCachePattern); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}
