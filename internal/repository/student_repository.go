package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-adp-api/internal/models"
)

const studentColumns = `id, usn, name, email, COALESCE(phone, '') AS phone, class, department,
	COALESCE(parent_name, '') AS parent_name, COALESCE(parent_phone, '') AS parent_phone, COALESCE(parent_email, '') AS parent_email`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter ordered by class, department
// and name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students", studentColumns)
	where, args := studentFilterClause(filter)
	query += where + " ORDER BY class, department, name"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches one student.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByUSNOrEmail checks whether another student already uses the given
// usn or email, optionally excluding one ID (for updates).
func (r *StudentRepository) ExistsByUSNOrEmail(ctx context.Context, usn, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE (usn = $1 OR email = $2)"
	args := []interface{}{usn, email}
	if excludeID > 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check usn/email: %w", err)
	}
	return true, nil
}

// Create inserts a new student. Returns ErrDuplicate when usn or email is
// already taken.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (usn, name, email, phone, class, department, parent_name, parent_phone, parent_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.GetContext(ctx, &student.ID, query,
		student.USN, student.Name, student.Email, student.Phone, student.Class,
		student.Department, student.ParentName, student.ParentPhone, student.ParentEmail)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. Returns ErrDuplicate when the new
// usn or email collides with a different row.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET usn = :usn, name = :name, email = :email, phone = :phone,
		class = :class, department = :department, parent_name = :parent_name,
		parent_phone = :parent_phone, parent_email = :parent_email WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. Attendance, assignments and marks cascade at
// the database.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// DistinctClasses returns every class value in use, for filter population.
func (r *StudentRepository) DistinctClasses(ctx context.Context) ([]string, error) {
	var classes []string
	if err := r.db.SelectContext(ctx, &classes, `SELECT DISTINCT class FROM students ORDER BY class`); err != nil {
		return nil, fmt.Errorf("distinct classes: %w", err)
	}
	return classes, nil
}

// DistinctDepartments returns every department value in use.
func (r *StudentRepository) DistinctDepartments(ctx context.Context) ([]string, error) {
	var departments []string
	if err := r.db.SelectContext(ctx, &departments, `SELECT DISTINCT department FROM students ORDER BY department`); err != nil {
		return nil, fmt.Errorf("distinct departments: %w", err)
	}
	return departments, nil
}

// IDsByFilter resolves the student set targeted by a bulk operation.
func (r *StudentRepository) IDsByFilter(ctx context.Context, filter models.StudentFilter) ([]int64, error) {
	query := "SELECT id FROM students"
	where, args := studentFilterClause(filter)
	query += where

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("resolve student ids: %w", err)
	}
	return ids, nil
}

// RefsByDepartment returns compact references for students of one
// department ordered by name.
func (r *StudentRepository) RefsByDepartment(ctx context.Context, department string) ([]models.StudentRef, error) {
	const query = `SELECT id, usn, name FROM students WHERE department = $1 ORDER BY name`
	var refs []models.StudentRef
	if err := r.db.SelectContext(ctx, &refs, query, department); err != nil {
		return nil, fmt.Errorf("students by department: %w", err)
	}
	return refs, nil
}

func studentFilterClause(filter models.StudentFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	if filter.Wanted(filter.Class) {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Wanted(filter.Department) {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
