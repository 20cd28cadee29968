package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type mockReportStudentRepo struct {
	student *models.Student
	count   int
}

func (m *mockReportStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.student != nil && m.student.ID == id {
		return m.student, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportStudentRepo) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

type mockReportAttendanceRepo struct {
	summary     models.AttendanceSummary
	total       int
	present     int
	breakdown   []models.DepartmentAttendance
	recent      []models.AttendanceEvent
	perStudent  []models.StudentAttendanceReport
	lastFilter  models.StudentFilter
	lastBreakAt time.Time
}

func (m *mockReportAttendanceRepo) StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error) {
	summary := m.summary
	return &summary, nil
}

func (m *mockReportAttendanceRepo) OverallTotals(ctx context.Context) (int, int, error) {
	return m.total, m.present, nil
}

func (m *mockReportAttendanceRepo) DepartmentBreakdown(ctx context.Context, date time.Time) ([]models.DepartmentAttendance, error) {
	m.lastBreakAt = date
	return m.breakdown, nil
}

func (m *mockReportAttendanceRepo) PerStudentReport(ctx context.Context, filter models.StudentFilter) ([]models.StudentAttendanceReport, error) {
	m.lastFilter = filter
	return m.perStudent, nil
}

func (m *mockReportAttendanceRepo) Recent(ctx context.Context, limit int) ([]models.AttendanceEvent, error) {
	return m.recent, nil
}

type mockReportMarkRepo struct {
	history []models.StudentMarkHistory
}

func (m *mockReportMarkRepo) HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentMarkHistory, error) {
	return m.history, nil
}

type mockReportTaskRepo struct {
	history []models.StudentTaskHistory
}

func (m *mockReportTaskRepo) HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentTaskHistory, error) {
	return m.history, nil
}

func newReportService(students *mockReportStudentRepo, attendance *mockReportAttendanceRepo) *ReportService {
	return NewReportService(students, attendance, &mockReportMarkRepo{}, &mockReportTaskRepo{}, nil, nil)
}

func TestDashboardDefaultsToToday(t *testing.T) {
	attendance := &mockReportAttendanceRepo{total: 10, present: 7}
	svc := newReportService(&mockReportStudentRepo{count: 5}, attendance)
	fixed := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	summary, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", summary.SelectedDate)
	assert.Equal(t, 5, summary.TotalStudents)
	assert.Equal(t, 10, summary.TotalAttendance)
	assert.Equal(t, 7, summary.PresentCount)
	assert.Equal(t, 3, summary.AbsentCount)
	assert.Equal(t, 70.0, summary.OverallPercent)
}

func TestDashboardExplicitDate(t *testing.T) {
	attendance := &mockReportAttendanceRepo{}
	svc := newReportService(&mockReportStudentRepo{}, attendance)

	summary, err := svc.Dashboard(context.Background(), "2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", summary.SelectedDate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), attendance.lastBreakAt)
}

func TestDashboardRejectsBadDate(t *testing.T) {
	svc := newReportService(&mockReportStudentRepo{}, &mockReportAttendanceRepo{})

	_, err := svc.Dashboard(context.Background(), "15/01/2026")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClassReportComputesPercentages(t *testing.T) {
	attendance := &mockReportAttendanceRepo{perStudent: []models.StudentAttendanceReport{
		{StudentID: 1, Name: "Asha Rao", TotalDays: 4, Present: 3, Absent: 1},
		{StudentID: 2, Name: "Ravi Kumar", TotalDays: 0},
	}}
	svc := newReportService(&mockReportStudentRepo{}, attendance)

	rows, err := svc.ClassReport(context.Background(), models.StudentFilter{Department: "Commerce"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 75.0, rows[0].Percentage)
	assert.Equal(t, 0.0, rows[1].Percentage)
	assert.Equal(t, "Commerce", attendance.lastFilter.Department)
}

func TestClassReportCSV(t *testing.T) {
	attendance := &mockReportAttendanceRepo{perStudent: []models.StudentAttendanceReport{
		{StudentID: 1, Name: "Asha Rao", Class: "1A", Department: "Commerce", TotalDays: 4, Present: 3, Absent: 1},
	}}
	svc := newReportService(&mockReportStudentRepo{}, attendance)

	payload, err := svc.ClassReportCSV(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Percentage")
	assert.Contains(t, lines[1], "Asha Rao")
	assert.Contains(t, lines[1], "75.00")
}

func TestStudentReportNotFound(t *testing.T) {
	svc := newReportService(&mockReportStudentRepo{}, &mockReportAttendanceRepo{})

	_, err := svc.StudentReport(context.Background(), 9)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentReportAggregates(t *testing.T) {
	students := &mockReportStudentRepo{student: &models.Student{ID: 1, USN: "1CR21BC001", Name: "Asha Rao"}}
	attendance := &mockReportAttendanceRepo{summary: models.AttendanceSummary{TotalDays: 10, Present: 9, Absent: 1}}
	marks := &mockReportMarkRepo{history: []models.StudentMarkHistory{{SubjectName: "Economics", ExamType: "Midterm", MarksObtained: 42, MaxMarks: 50}}}
	tasks := &mockReportTaskRepo{history: []models.StudentTaskHistory{{Title: "Essay", Status: models.TaskStatusPending}}}
	svc := NewReportService(students, attendance, marks, tasks, nil, nil)

	report, err := svc.StudentReport(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", report.Student.Name)
	assert.Equal(t, 90.0, report.Attendance.Percentage)
	require.Len(t, report.Marks, 1)
	require.Len(t, report.Tasks, 1)
}

func TestStudentReportPDF(t *testing.T) {
	students := &mockReportStudentRepo{student: &models.Student{ID: 1, USN: "1CR21BC001", Name: "Asha Rao", Class: "1A", Department: "Commerce"}}
	attendance := &mockReportAttendanceRepo{summary: models.AttendanceSummary{TotalDays: 10, Present: 9, Absent: 1}}
	svc := NewReportService(students, attendance, &mockReportMarkRepo{}, &mockReportTaskRepo{}, nil, nil)

	payload, err := svc.StudentReportPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
