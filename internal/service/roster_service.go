package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/rehberlik-api/internal/models"
	appErrors "github.com/noah-isme/rehberlik-api/pkg/errors"
)

type rosterRepository interface {
	Classes(ctx context.Context) ([]models.SchoolClass, error)
	StudentsByClass(ctx context.Context, classKey string) ([]models.Student, error)
	Teachers(ctx context.Context) ([]models.Teacher, error)
}

// RosterService exposes the read-only roster and teacher directory the
// appointment forms pick participants from.
type RosterService struct {
	repo   rosterRepository
	logger *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(repo rosterRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, logger: logger}
}

// Classes returns all roster classes.
func (s *RosterService) Classes(ctx context.Context) ([]models.SchoolClass, error) {
	classes, err := s.repo.Classes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Students returns the students of one class.
func (s *RosterService) Students(ctx context.Context, classKey string) ([]models.Student, error) {
	if classKey == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class key is required")
	}
	students, err := s.repo.StudentsByClass(ctx, classKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Teachers returns the teacher directory.
func (s *RosterService) Teachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.Teachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}
