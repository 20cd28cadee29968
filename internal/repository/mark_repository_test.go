package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
)

func TestMarkRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectQuery("INSERT INTO marks").
		WithArgs(int64(1), int64(2), "Midterm", 42.0, 50.0, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	mark := &models.Mark{StudentID: 1, SubjectID: 2, ExamType: "Midterm", MarksObtained: 42, MaxMarks: 50}
	require.NoError(t, repo.Create(context.Background(), mark))
	assert.Equal(t, int64(9), mark.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryUpdateReportsAffected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("UPDATE marks SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Update(context.Background(), &models.Mark{ID: 9, StudentID: 1, SubjectID: 2, ExamType: "Final", MarksObtained: 44, MaxMarks: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("UPDATE marks SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Update(context.Background(), &models.Mark{ID: 404})
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryHistoryByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectQuery("FROM marks m(.|\n)+WHERE m.student_id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"subject_name", "course", "semester", "exam_type", "marks_obtained", "max_marks", "exam_date", "remarks"}).
			AddRow("Economics", "BCom", 1, "Midterm", 42.0, 50.0, nil, nil))

	history, err := repo.HistoryByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Economics", history[0].SubjectName)
	assert.Equal(t, 42.0, history[0].MarksObtained)
	assert.NoError(t, mock.ExpectationsWereMet())
}
