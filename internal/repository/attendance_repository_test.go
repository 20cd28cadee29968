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

func TestAttendanceRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO attendance").
		WithArgs(int64(1), date, models.AttendanceStatusPresent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	record := &models.AttendanceRecord{StudentID: 1, Date: date, Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Insert(context.Background(), record))
	assert.Equal(t, int64(12), record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsertDuplicateDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnError(&pq.Error{Code: "23505"})

	record := &models.AttendanceRecord{StudentID: 1, Date: time.Now(), Status: models.AttendanceStatusAbsent}
	err := repo.Insert(context.Background(), record)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkedStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT student_id FROM attendance WHERE date = \\$1").
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(1).AddRow(3))

	ids, err := repo.MarkedStudentIDs(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStudentSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT(.|\n)+FROM attendance WHERE student_id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"total_days", "present_count", "absent_count"}).AddRow(10, 8, 2))

	summary, err := repo.StudentSummary(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalDays)
	assert.Equal(t, 8, summary.Present)
	assert.Equal(t, 2, summary.Absent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryOverallTotals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT(.|\n)+FROM attendance").
		WillReturnRows(sqlmock.NewRows([]string{"total_days", "present_count"}).AddRow(40, 31))

	total, present, err := repo.OverallTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, total)
	assert.Equal(t, 31, present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryPerStudentReportFiltered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("FROM students s(.|\n)+LEFT JOIN attendance a(.|\n)+WHERE s.department = \\$1").
		WithArgs("Commerce").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "class", "department", "total_days", "present_count", "absent_count"}).
			AddRow(1, "Asha Rao", "1A", "Commerce", 4, 3, 1))

	rows, err := repo.PerStudentReport(context.Background(), models.StudentFilter{Department: "Commerce"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}
