package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-adp-api/internal/models"
)

// MarkRepository handles persistence for exam marks. Marks carry no
// uniqueness constraint, so repeated entries for the same exam are stored
// as-is.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create inserts one mark row.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	const query = `INSERT INTO marks (student_id, subject_id, exam_type, marks_obtained, max_marks, exam_date, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.GetContext(ctx, &mark.ID, query,
		mark.StudentID, mark.SubjectID, mark.ExamType, mark.MarksObtained, mark.MaxMarks, mark.ExamDate, mark.Remarks)
	if err != nil {
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}

// Update modifies one mark row. Returns the number of rows touched so the
// caller can distinguish a missing ID.
func (r *MarkRepository) Update(ctx context.Context, mark *models.Mark) (int, error) {
	const query = `UPDATE marks SET student_id = $1, subject_id = $2, exam_type = $3,
		marks_obtained = $4, max_marks = $5, exam_date = $6, remarks = $7 WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		mark.StudentID, mark.SubjectID, mark.ExamType, mark.MarksObtained, mark.MaxMarks, mark.ExamDate, mark.Remarks, mark.ID)
	if err != nil {
		return 0, fmt.Errorf("update mark: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update mark rows: %w", err)
	}
	return int(affected), nil
}

// Delete removes one mark row.
func (r *MarkRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM marks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete mark: %w", err)
	}
	return nil
}

// ListAll returns every mark joined with student and subject metadata.
func (r *MarkRepository) ListAll(ctx context.Context) ([]models.MarkDetail, error) {
	const query = `SELECT m.id, m.student_id, m.subject_id, m.exam_type, m.marks_obtained, m.max_marks,
		m.exam_date, COALESCE(m.remarks, '') AS remarks,
		s.name AS student_name, s.usn, sub.name AS subject_name, sub.course, sub.semester
		FROM marks m
		JOIN students s ON m.student_id = s.id
		JOIN subjects sub ON m.subject_id = sub.id
		ORDER BY sub.course, sub.semester, m.exam_date DESC NULLS LAST, m.id DESC`
	var marks []models.MarkDetail
	if err := r.db.SelectContext(ctx, &marks, query); err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	return marks, nil
}

// HistoryByStudent returns a student's marks ordered for the report view.
func (r *MarkRepository) HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentMarkHistory, error) {
	const query = `SELECT sub.name AS subject_name, sub.course, sub.semester,
		m.exam_type, m.marks_obtained, m.max_marks, m.exam_date, m.remarks
		FROM marks m
		JOIN subjects sub ON m.subject_id = sub.id
		WHERE m.student_id = $1
		ORDER BY sub.course, sub.semester, sub.name, m.exam_date`
	var rows []models.StudentMarkHistory
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student mark history: %w", err)
	}
	return rows, nil
}
