package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
)

func subjectRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "course", "semester", "description"})
}

func TestSubjectRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM subjects WHERE course = \\$1 AND semester = \\$2 ORDER BY course, semester, name").
		WithArgs("BCom", 3).
		WillReturnRows(subjectRows().
			AddRow(1, "Corporate Accounting", "BCom", 3, ""))

	subjects, err := repo.List(context.Background(), models.SubjectFilter{Course: "BCom", Semester: 3})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Corporate Accounting", subjects[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT 1 FROM subjects WHERE name = \\$1 AND course = \\$2 AND semester = \\$3 LIMIT 1").
		WithArgs("Corporate Accounting", "BCom", 3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "Corporate Accounting", "BCom", 3, 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsExcludesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT 1 FROM subjects WHERE name = \\$1 AND course = \\$2 AND semester = \\$3 AND id <> \\$4 LIMIT 1").
		WithArgs("Corporate Accounting", "BCom", 3, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err := repo.Exists(context.Background(), "Corporate Accounting", "BCom", 3, 5)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("INSERT INTO subjects").
		WithArgs("Corporate Accounting", "BCom", 3, "Second year paper").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	subject := &models.Subject{Name: "Corporate Accounting", Course: "BCom", Semester: 3, Description: "Second year paper"}
	err := repo.Create(context.Background(), subject)
	require.NoError(t, err)
	assert.Equal(t, int64(9), subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("INSERT INTO subjects").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Subject{Name: "Corporate Accounting", Course: "BCom", Semester: 3})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Update(context.Background(), &models.Subject{ID: 2, Name: "Corporate Accounting", Course: "BCom", Semester: 3})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("DELETE FROM subjects WHERE id = \\$1").
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 6))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositorySemestersByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT DISTINCT semester FROM subjects WHERE course = \\$1 ORDER BY semester").
		WithArgs("BCom").
		WillReturnRows(sqlmock.NewRows([]string{"semester"}).AddRow(1).AddRow(3))

	semesters, err := repo.SemestersByCourse(context.Background(), "BCom")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, semesters)
	assert.NoError(t, mock.ExpectationsWereMet())
}
