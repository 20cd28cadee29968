package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type assignment struct {
	status      models.TaskStatus
	completedAt *time.Time
}

type mockTaskRepo struct {
	tasks       map[int64]models.Task
	assignments map[int64]map[int64]*assignment
	nextID      int64
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{
		tasks:       make(map[int64]models.Task),
		assignments: make(map[int64]map[int64]*assignment),
	}
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	m.nextID++
	task.ID = m.nextID
	m.tasks[task.ID] = *task
	m.assignments[task.ID] = make(map[int64]*assignment)
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	if t, ok := m.tasks[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	delete(m.tasks, id)
	delete(m.assignments, id)
	return nil
}

func (m *mockTaskRepo) ListWithCounts(ctx context.Context) ([]models.TaskOverview, error) {
	var out []models.TaskOverview
	for id, t := range m.tasks {
		overview := models.TaskOverview{Task: t}
		for _, a := range m.assignments[id] {
			overview.TotalAssigned++
			if a.status == models.TaskStatusCompleted {
				overview.CompletedCount++
			}
		}
		out = append(out, overview)
	}
	return out, nil
}

func (m *mockTaskRepo) AssignmentRows(ctx context.Context, taskID int64) ([]models.TaskAssignmentRow, error) {
	var rows []models.TaskAssignmentRow
	for studentID, a := range m.assignments[taskID] {
		status := a.status
		rows = append(rows, models.TaskAssignmentRow{StudentID: studentID, Status: &status, CompletedDate: a.completedAt})
	}
	return rows, nil
}

func (m *mockTaskRepo) AssignedStudentIDs(ctx context.Context, taskID int64) ([]int64, error) {
	var ids []int64
	for studentID := range m.assignments[taskID] {
		ids = append(ids, studentID)
	}
	return ids, nil
}

func (m *mockTaskRepo) InsertAssignment(ctx context.Context, taskID, studentID int64) error {
	if _, ok := m.assignments[taskID][studentID]; ok {
		return repository.ErrDuplicate
	}
	m.assignments[taskID][studentID] = &assignment{status: models.TaskStatusPending}
	return nil
}

func (m *mockTaskRepo) DeleteAssignment(ctx context.Context, taskID, studentID int64) error {
	delete(m.assignments[taskID], studentID)
	return nil
}

func (m *mockTaskRepo) Complete(ctx context.Context, taskID, studentID int64, completedAt time.Time) error {
	if a, ok := m.assignments[taskID][studentID]; ok {
		a.status = models.TaskStatusCompleted
		a.completedAt = &completedAt
	}
	return nil
}

func (m *mockTaskRepo) Reset(ctx context.Context, taskID, studentID int64) error {
	if a, ok := m.assignments[taskID][studentID]; ok {
		a.status = models.TaskStatusPending
		a.completedAt = nil
	}
	return nil
}

func (m *mockTaskRepo) BulkComplete(ctx context.Context, taskID int64, completedAt time.Time) (int, error) {
	count := 0
	for _, a := range m.assignments[taskID] {
		if a.status == models.TaskStatusPending {
			a.status = models.TaskStatusCompleted
			a.completedAt = &completedAt
			count++
		}
	}
	return count, nil
}

func TestTaskCreateAssignAll(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{ids: []int64{1, 2, 3}}, nil, nil)

	task, assigned, err := svc.Create(context.Background(), CreateTaskRequest{
		Title:     "Submit ledger exercise",
		DueDate:   "2026-04-01",
		AssignAll: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, 3, assigned)
	assert.Len(t, repo.assignments[task.ID], 3)
}

func TestTaskCreateMissingTitle(t *testing.T) {
	svc := NewTaskService(newMockTaskRepo(), &mockStudentResolver{}, nil, nil)

	_, _, err := svc.Create(context.Background(), CreateTaskRequest{DueDate: "2026-04-01"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingField.Code, appErr.Code)
}

func TestTaskUpdateAssignmentsAppliesDelta(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)
	_, err = svc.UpdateAssignments(context.Background(), task.ID, []int64{1, 2, 3})
	require.NoError(t, err)

	result, err := svc.UpdateAssignments(context.Background(), task.ID, []int64{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 1, result.Unassigned)

	ids, _ := repo.AssignedStudentIDs(context.Background(), task.ID)
	assert.ElementsMatch(t, []int64{2, 3, 4}, ids)
}

func TestTaskUpdateAssignmentsIdempotent(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)

	desired := []int64{1, 2}
	first, err := svc.UpdateAssignments(context.Background(), task.ID, desired)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Assigned)

	second, err := svc.UpdateAssignments(context.Background(), task.ID, desired)
	require.NoError(t, err)
	assert.True(t, second.NoChange())
}

func TestTaskUpdateAssignmentsEmptySetUnassignsAll(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)
	_, err = svc.UpdateAssignments(context.Background(), task.ID, []int64{1, 2})
	require.NoError(t, err)

	result, err := svc.UpdateAssignments(context.Background(), task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Unassigned)
	assert.Empty(t, repo.assignments[task.ID])
}

func TestTaskAssignOneAlreadyAssigned(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)

	first, err := svc.AssignOne(context.Background(), task.ID, 1)
	require.NoError(t, err)
	assert.False(t, first.AlreadyAssigned)

	second, err := svc.AssignOne(context.Background(), task.ID, 1)
	require.NoError(t, err)
	assert.True(t, second.AlreadyAssigned)
}

func TestTaskCompleteStampsDate(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)
	fixed := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)
	_, err = svc.AssignOne(context.Background(), task.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), task.ID, 1))
	a := repo.assignments[task.ID][1]
	assert.Equal(t, models.TaskStatusCompleted, a.status)
	require.NotNil(t, a.completedAt)
	assert.Equal(t, fixed, *a.completedAt)

	require.NoError(t, svc.Reset(context.Background(), task.ID, 1))
	assert.Equal(t, models.TaskStatusPending, a.status)
	assert.Nil(t, a.completedAt)
}

func TestTaskBulkCompleteOnlyPending(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo, &mockStudentResolver{}, nil, nil)

	task, _, err := svc.Create(context.Background(), CreateTaskRequest{Title: "Essay", DueDate: "2026-04-01"})
	require.NoError(t, err)
	_, err = svc.UpdateAssignments(context.Background(), task.ID, []int64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, svc.Complete(context.Background(), task.ID, 1))

	count, err := svc.BulkComplete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTaskDetailNotFound(t *testing.T) {
	svc := NewTaskService(newMockTaskRepo(), &mockStudentResolver{}, nil, nil)

	_, err := svc.Detail(context.Background(), 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
