package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-adp-api/internal/models"
)

// TaskRepository handles persistence for tasks and their student
// assignments.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	const query = `INSERT INTO tasks (title, description, due_date) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &task.ID, query, task.Title, task.Description, task.DueDate); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID fetches one task.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	const query = `SELECT id, title, COALESCE(description, '') AS description, due_date FROM tasks WHERE id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task; its assignments cascade at the database.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListWithCounts returns every task with assignment tallies ordered by due
// date.
func (r *TaskRepository) ListWithCounts(ctx context.Context) ([]models.TaskOverview, error) {
	const query = `SELECT t.id, t.title, COALESCE(t.description, '') AS description, t.due_date,
		COUNT(DISTINCT st.id) AS total_assigned,
		COALESCE(SUM(CASE WHEN st.status = 'Completed' THEN 1 ELSE 0 END), 0) AS completed_count
		FROM tasks t
		LEFT JOIN student_tasks st ON t.id = st.task_id
		GROUP BY t.id
		ORDER BY t.due_date`
	var tasks []models.TaskOverview
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// AssignmentRows pairs every student with their assignment state for one
// task. Unassigned students appear with a null status.
func (r *TaskRepository) AssignmentRows(ctx context.Context, taskID int64) ([]models.TaskAssignmentRow, error) {
	const query = `SELECT s.id AS student_id, s.usn, s.name, s.class, s.department,
		st.status, st.completed_date
		FROM students s
		LEFT JOIN student_tasks st ON s.id = st.student_id AND st.task_id = $1
		ORDER BY s.class, s.department, s.name`
	var rows []models.TaskAssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, taskID); err != nil {
		return nil, fmt.Errorf("task assignment rows: %w", err)
	}
	return rows, nil
}

// AssignedStudentIDs returns the students currently assigned to a task.
func (r *TaskRepository) AssignedStudentIDs(ctx context.Context, taskID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM student_tasks WHERE task_id = $1`, taskID); err != nil {
		return nil, fmt.Errorf("assigned students: %w", err)
	}
	return ids, nil
}

// InsertAssignment creates one Pending join row. Returns ErrDuplicate when
// the student is already assigned.
func (r *TaskRepository) InsertAssignment(ctx context.Context, taskID, studentID int64) error {
	const query = `INSERT INTO student_tasks (task_id, student_id, status) VALUES ($1, $2, 'Pending')`
	if _, err := r.db.ExecContext(ctx, query, taskID, studentID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

// DeleteAssignment removes one join row.
func (r *TaskRepository) DeleteAssignment(ctx context.Context, taskID, studentID int64) error {
	const query = `DELETE FROM student_tasks WHERE task_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, taskID, studentID); err != nil {
		return fmt.Errorf("unassign task: %w", err)
	}
	return nil
}

// Complete marks one assignment Completed and stamps the completion date.
func (r *TaskRepository) Complete(ctx context.Context, taskID, studentID int64, completedAt time.Time) error {
	const query = `UPDATE student_tasks SET status = 'Completed', completed_date = $3
		WHERE task_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, taskID, studentID, completedAt); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// Reset returns one assignment to Pending and clears the completion date.
func (r *TaskRepository) Reset(ctx context.Context, taskID, studentID int64) error {
	const query = `UPDATE student_tasks SET status = 'Pending', completed_date = NULL
		WHERE task_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, taskID, studentID); err != nil {
		return fmt.Errorf("reset task: %w", err)
	}
	return nil
}

// BulkComplete transitions every Pending assignment of a task to Completed
// with a single stamp and reports how many rows changed.
func (r *TaskRepository) BulkComplete(ctx context.Context, taskID int64, completedAt time.Time) (int, error) {
	const query = `UPDATE student_tasks SET status = 'Completed', completed_date = $2
		WHERE task_id = $1 AND status = 'Pending'`
	result, err := r.db.ExecContext(ctx, query, taskID, completedAt)
	if err != nil {
		return 0, fmt.Errorf("bulk complete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk complete rows: %w", err)
	}
	return int(affected), nil
}

// HistoryByStudent returns a student's task history ordered by due date.
func (r *TaskRepository) HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentTaskHistory, error) {
	const query = `SELECT t.title, t.due_date, st.status, st.completed_date
		FROM student_tasks st
		JOIN tasks t ON st.task_id = t.id
		WHERE st.student_id = $1
		ORDER BY t.due_date`
	var rows []models.StudentTaskHistory
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student task history: %w", err)
	}
	return rows, nil
}
