package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
)

func TestTaskRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	due := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Ledger assignment", "Chapters 4-6", due).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	task := &models.Task{Title: "Ledger assignment", Description: "Chapters 4-6", DueDate: due}
	err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, int64(3), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryListWithCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	due := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("LEFT JOIN student_tasks st ON t.id = st.task_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "due_date", "total_assigned", "completed_count"}).
			AddRow(3, "Ledger assignment", "", due, 4, 1))

	tasks, err := repo.ListWithCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 4, tasks[0].TotalAssigned)
	assert.Equal(t, 1, tasks[0].CompletedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryInsertAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("INSERT INTO student_tasks").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertAssignment(context.Background(), 3, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryInsertAssignmentDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("INSERT INTO student_tasks").
		WithArgs(int64(3), int64(7)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.InsertAssignment(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryDeleteAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("DELETE FROM student_tasks WHERE task_id = \\$1 AND student_id = \\$2").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteAssignment(context.Background(), 3, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("DELETE FROM tasks WHERE id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryComplete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	stamp := time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE student_tasks SET status = 'Completed', completed_date = \\$3").
		WithArgs(int64(3), int64(7), stamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Complete(context.Background(), 3, 7, stamp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryBulkCompleteReportsAffected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	stamp := time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE student_tasks SET status = 'Completed', completed_date = \\$2").
		WithArgs(int64(3), stamp).
		WillReturnResult(sqlmock.NewResult(0, 5))

	affected, err := repo.BulkComplete(context.Background(), 3, stamp)
	require.NoError(t, err)
	assert.Equal(t, 5, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
