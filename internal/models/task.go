package models

import "time"

// TaskStatus represents the state of one student's assignment.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Task is a unit of work handed out to students. It is independent of any
// student until assigned.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
}

// TaskOverview is a task with assignment counts for the listing view.
type TaskOverview struct {
	Task
	TotalAssigned  int `db:"total_assigned" json:"total_assigned"`
	CompletedCount int `db:"completed_count" json:"completed_count"`
}

// TaskAssignmentRow pairs every student with their assignment state for a
// task. Status and CompletedDate are nil for unassigned students.
type TaskAssignmentRow struct {
	StudentID     int64       `db:"student_id" json:"student_id"`
	USN           string      `db:"usn" json:"usn"`
	Name          string      `db:"name" json:"name"`
	Class         string      `db:"class" json:"class"`
	Department    string      `db:"department" json:"department"`
	Status        *TaskStatus `db:"status" json:"status,omitempty"`
	CompletedDate *time.Time  `db:"completed_date" json:"completed_date,omitempty"`
}

// ReconcileResult reports the delta applied by an assignment reconciliation.
type ReconcileResult struct {
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
}

// NoChange reports whether the reconciliation was a no-op.
func (r ReconcileResult) NoChange() bool {
	return r.Assigned == 0 && r.Unassigned == 0
}

// StudentTaskHistory is one task entry in a student's report.
type StudentTaskHistory struct {
	Title         string     `db:"title" json:"title"`
	DueDate       time.Time  `db:"due_date" json:"due_date"`
	Status        TaskStatus `db:"status" json:"status"`
	CompletedDate *time.Time `db:"completed_date" json:"completed_date,omitempty"`
}
