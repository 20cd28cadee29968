package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-adp-api/internal/models"
)

const subjectColumns = `id, name, course, semester, COALESCE(description, '') AS description`

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the filter ordered by course, semester
// and name.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects", subjectColumns)
	conditions := []string{}
	args := []interface{}{}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY course, semester, name"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches one subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Exists checks whether another subject already uses the (name, course,
// semester) triple, optionally excluding one ID.
func (r *SubjectRepository) Exists(ctx context.Context, name, course string, semester int, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE name = $1 AND course = $2 AND semester = $3"
	args := []interface{}{name, course, semester}
	if excludeID > 0 {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject: %w", err)
	}
	return true, nil
}

// Create inserts a new subject. The unique index backs the service's
// pre-check, so races still come back as ErrDuplicate.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name, course, semester, description) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.GetContext(ctx, &subject.ID, query, subject.Name, subject.Course, subject.Semester, subject.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	const query = `UPDATE subjects SET name = :name, course = :course, semester = :semester, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject; dependent marks cascade at the database.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// SemestersByCourse returns the distinct semesters with subjects for a
// course, ascending.
func (r *SubjectRepository) SemestersByCourse(ctx context.Context, course string) ([]int, error) {
	var semesters []int
	const query = `SELECT DISTINCT semester FROM subjects WHERE course = $1 ORDER BY semester`
	if err := r.db.SelectContext(ctx, &semesters, query, course); err != nil {
		return nil, fmt.Errorf("semesters by course: %w", err)
	}
	return semesters, nil
}

// RefsByCourseSemester returns compact references for the subjects of one
// (course, semester) pair ordered by name.
func (r *SubjectRepository) RefsByCourseSemester(ctx context.Context, course string, semester int) ([]models.SubjectRef, error) {
	const query = `SELECT id, name FROM subjects WHERE course = $1 AND semester = $2 ORDER BY name`
	var refs []models.SubjectRef
	if err := r.db.SelectContext(ctx, &refs, query, course, semester); err != nil {
		return nil, fmt.Errorf("subjects by course/semester: %w", err)
	}
	return refs, nil
}
