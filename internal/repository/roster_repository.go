package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rehberlik-api/internal/models"
)

// RosterRepository reads the class roster and teacher directory the
// appointment forms pick participants from. The roster itself is maintained
// elsewhere; this surface is read-only.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Classes returns all roster classes ordered by key.
func (r *RosterRepository) Classes(ctx context.Context) ([]models.SchoolClass, error) {
	const query = `SELECT class_key, display_text FROM roster_classes ORDER BY class_key ASC`
	var classes []models.SchoolClass
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// StudentsByClass returns the students of one class in roster order.
func (r *RosterRepository) StudentsByClass(ctx context.Context, classKey string) ([]models.Student, error) {
	const query = `SELECT id, display_name FROM roster_students WHERE class_key = $1 ORDER BY display_name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classKey); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Teachers returns the teacher directory.
func (r *RosterRepository) Teachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, display_name FROM teachers ORDER BY display_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}
