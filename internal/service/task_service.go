package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	ListWithCounts(ctx context.Context) ([]models.TaskOverview, error)
	AssignmentRows(ctx context.Context, taskID int64) ([]models.TaskAssignmentRow, error)
	AssignedStudentIDs(ctx context.Context, taskID int64) ([]int64, error)
	InsertAssignment(ctx context.Context, taskID, studentID int64) error
	DeleteAssignment(ctx context.Context, taskID, studentID int64) error
	Complete(ctx context.Context, taskID, studentID int64, completedAt time.Time) error
	Reset(ctx context.Context, taskID, studentID int64) error
	BulkComplete(ctx context.Context, taskID int64, completedAt time.Time) (int, error)
}

type taskStudentResolver interface {
	IDsByFilter(ctx context.Context, filter models.StudentFilter) ([]int64, error)
}

// CreateTaskRequest holds the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	AssignAll   bool   `json:"assign_all"`
}

// TaskDetail is a task with the assignment state of every student.
type TaskDetail struct {
	Task          models.Task                `json:"task"`
	Students      []models.TaskAssignmentRow `json:"students"`
	AssignedCount int                        `json:"assigned_count"`
	TotalStudents int                        `json:"total_students"`
}

// AssignOutcome reports a single-student assignment attempt. An already
// assigned student is a warning for the caller, not an error.
type AssignOutcome struct {
	AlreadyAssigned bool `json:"already_assigned"`
}

// TaskService handles task and assignment use-cases.
type TaskService struct {
	repo      taskRepository
	students  taskStudentResolver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs the task service.
func NewTaskService(repo taskRepository, students taskStudentResolver, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, students: students, validator: validate, logger: logger, now: time.Now}
}

// Create stores a new task and optionally assigns it to every current
// student. Per-student conflicts during assign-all are skipped, not fatal.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*models.Task, int, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "title and due date are required")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, 0, err
	}

	task := &models.Task{Title: req.Title, Description: req.Description, DueDate: dueDate}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create task")
	}

	assigned := 0
	if req.AssignAll {
		ids, err := s.students.IDsByFilter(ctx, models.StudentFilter{})
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to resolve students")
		}
		for _, id := range ids {
			if err := s.repo.InsertAssignment(ctx, task.ID, id); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					continue
				}
				return nil, 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to assign task")
			}
			assigned++
		}
	}

	s.logger.Info("task created", zap.Int64("id", task.ID), zap.Int("assigned", assigned))
	return task, assigned, nil
}

// List returns every task with assignment tallies.
func (s *TaskService) List(ctx context.Context) ([]models.TaskOverview, error) {
	tasks, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Detail returns a task and the assignment state of every student.
func (s *TaskService) Detail(ctx context.Context, taskID int64) (*TaskDetail, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.AssignmentRows(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load assignments")
	}

	assigned := 0
	for _, row := range rows {
		if row.Status != nil {
			assigned++
		}
	}
	return &TaskDetail{Task: *task, Students: rows, AssignedCount: assigned, TotalStudents: len(rows)}, nil
}

// UpdateAssignments reconciles a task's assignments against the complete
// desired student set: it inserts Pending rows for desired-but-unassigned
// students and deletes rows for assigned-but-undesired ones, reporting the
// applied delta.
func (s *TaskService) UpdateAssignments(ctx context.Context, taskID int64, desired []int64) (*models.ReconcileResult, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}

	current, err := s.repo.AssignedStudentIDs(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load assignments")
	}

	currentSet := make(map[int64]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	result := &models.ReconcileResult{}
	for _, id := range desired {
		if _, ok := currentSet[id]; ok {
			continue
		}
		if err := s.repo.InsertAssignment(ctx, taskID, id); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to assign task")
		}
		result.Assigned++
	}
	for _, id := range current {
		if _, ok := desiredSet[id]; ok {
			continue
		}
		if err := s.repo.DeleteAssignment(ctx, taskID, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to unassign task")
		}
		result.Unassigned++
	}

	s.logger.Info("assignments reconciled",
		zap.Int64("task_id", taskID),
		zap.Int("assigned", result.Assigned),
		zap.Int("unassigned", result.Unassigned))
	return result, nil
}

// AssignOne assigns a task to a single student. An existing assignment is
// reported as a warning outcome instead of failing.
func (s *TaskService) AssignOne(ctx context.Context, taskID, studentID int64) (*AssignOutcome, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := s.repo.InsertAssignment(ctx, taskID, studentID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return &AssignOutcome{AlreadyAssigned: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to assign task")
	}
	return &AssignOutcome{}, nil
}

// Complete marks one assignment Completed, stamped with today's date.
func (s *TaskService) Complete(ctx context.Context, taskID, studentID int64) error {
	if err := s.repo.Complete(ctx, taskID, studentID, s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to complete task")
	}
	return nil
}

// Reset returns one assignment to Pending and clears its completion date.
func (s *TaskService) Reset(ctx context.Context, taskID, studentID int64) error {
	if err := s.repo.Reset(ctx, taskID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to reset task")
	}
	return nil
}

// BulkComplete transitions every Pending assignment of a task to
// Completed, all stamped with the same date, and returns how many changed.
func (s *TaskService) BulkComplete(ctx context.Context, taskID int64) (int, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return 0, err
	}
	count, err := s.repo.BulkComplete(ctx, taskID, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to bulk complete")
	}
	return count, nil
}

// Delete removes a task and, through the database, all of its assignments.
func (s *TaskService) Delete(ctx context.Context, taskID int64) error {
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete task")
	}
	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load task")
	}
	return task, nil
}
