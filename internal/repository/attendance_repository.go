package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-adp-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert stores one attendance record. Returns ErrDuplicate when the
// (student, date) pair is already marked; the existing row is untouched.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance (student_id, date, status) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.GetContext(ctx, &record.ID, query, record.StudentID, record.Date, record.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// MarkedStudentIDs returns the students already marked on a date.
func (r *AttendanceRepository) MarkedStudentIDs(ctx context.Context, date time.Time) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM attendance WHERE date = $1`, date); err != nil {
		return nil, fmt.Errorf("marked students: %w", err)
	}
	return ids, nil
}

// History returns all attendance events, most recent first.
func (r *AttendanceRepository) History(ctx context.Context) ([]models.AttendanceEvent, error) {
	return r.events(ctx, 0)
}

// Recent returns the latest attendance events across all students.
func (r *AttendanceRepository) Recent(ctx context.Context, limit int) ([]models.AttendanceEvent, error) {
	return r.events(ctx, limit)
}

func (r *AttendanceRepository) events(ctx context.Context, limit int) ([]models.AttendanceEvent, error) {
	query := `SELECT s.name, s.class, s.department, a.date, a.status
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		ORDER BY a.date DESC, a.id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var events []models.AttendanceEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return events, nil
}

// StudentSummary returns raw day counts for one student. Percentage is
// computed by the service layer.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error) {
	const query = `SELECT
		COUNT(*) AS total_days,
		COALESCE(SUM(CASE WHEN status = 'Present' THEN 1 ELSE 0 END), 0) AS present_count,
		COALESCE(SUM(CASE WHEN status = 'Absent' THEN 1 ELSE 0 END), 0) AS absent_count
		FROM attendance WHERE student_id = $1`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance summary: %w", err)
	}
	return &summary, nil
}

// OverallTotals returns the all-time record and present counts.
func (r *AttendanceRepository) OverallTotals(ctx context.Context) (total int, present int, err error) {
	const query = `SELECT
		COUNT(*) AS total_days,
		COALESCE(SUM(CASE WHEN status = 'Present' THEN 1 ELSE 0 END), 0) AS present_count
		FROM attendance`
	row := struct {
		TotalDays    int `db:"total_days"`
		PresentCount int `db:"present_count"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("attendance totals: %w", err)
	}
	return row.TotalDays, row.PresentCount, nil
}

// DepartmentBreakdown aggregates one date per department. The left join
// keeps departments with no marked students in the result with zero counts.
func (r *AttendanceRepository) DepartmentBreakdown(ctx context.Context, date time.Time) ([]models.DepartmentAttendance, error) {
	const query = `SELECT
		s.department,
		COUNT(s.id) AS total_students,
		COALESCE(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END), 0) AS present,
		COALESCE(SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END), 0) AS absent
		FROM students s
		LEFT JOIN attendance a ON s.id = a.student_id AND a.date = $1
		GROUP BY s.department
		ORDER BY s.department`
	var rows []models.DepartmentAttendance
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("department breakdown: %w", err)
	}
	return rows, nil
}

// PerStudentReport aggregates day counts per student, optionally filtered
// by class and department.
func (r *AttendanceRepository) PerStudentReport(ctx context.Context, filter models.StudentFilter) ([]models.StudentAttendanceReport, error) {
	query := `SELECT s.id, s.name, s.class, s.department,
		COUNT(a.id) AS total_days,
		COALESCE(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END), 0) AS present_count,
		COALESCE(SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END), 0) AS absent_count
		FROM students s
		LEFT JOIN attendance a ON s.id = a.student_id`

	conditions := []string{}
	args := []interface{}{}
	if filter.Wanted(filter.Class) {
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Wanted(filter.Department) {
		conditions = append(conditions, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY s.id ORDER BY s.class, s.department, s.name"

	var rows []models.StudentAttendanceReport
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("per-student report: %w", err)
	}
	return rows, nil
}
