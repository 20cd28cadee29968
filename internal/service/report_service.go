package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
	"github.com/campushq/college-adp-api/pkg/export"
)

const dashboardCachePrefix = "dashboard:"

const recentAttendanceLimit = 5

type reportStudentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Count(ctx context.Context) (int, error)
}

type reportAttendanceRepository interface {
	StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error)
	OverallTotals(ctx context.Context) (int, int, error)
	DepartmentBreakdown(ctx context.Context, date time.Time) ([]models.DepartmentAttendance, error)
	PerStudentReport(ctx context.Context, filter models.StudentFilter) ([]models.StudentAttendanceReport, error)
	Recent(ctx context.Context, limit int) ([]models.AttendanceEvent, error)
}

type reportMarkRepository interface {
	HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentMarkHistory, error)
}

type reportTaskRepository interface {
	HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentTaskHistory, error)
}

// ReportService aggregates cross-module data for the dashboard and the
// class and student reports.
type ReportService struct {
	students   reportStudentRepository
	attendance reportAttendanceRepository
	marks      reportMarkRepository
	tasks      reportTaskRepository
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs a report service.
func NewReportService(
	students reportStudentRepository,
	attendance reportAttendanceRepository,
	marks reportMarkRepository,
	tasks reportTaskRepository,
	cache *CacheService,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:   students,
		attendance: attendance,
		marks:      marks,
		tasks:      tasks,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// Dashboard builds the landing-page summary for the given date. An empty
// date defaults to today. Results are cached per date until the next
// attendance write invalidates them.
func (s *ReportService) Dashboard(ctx context.Context, rawDate string) (*models.DashboardSummary, error) {
	date := s.now()
	if rawDate != "" {
		parsed, err := parseDate(rawDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be in YYYY-MM-DD format")
		}
		date = parsed
	}
	dateKey := date.Format(dateLayout)

	cacheKey := dashboardCachePrefix + dateKey
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count students")
	}
	totalAttendance, present, err := s.attendance.OverallTotals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance totals")
	}
	breakdown, err := s.attendance.DepartmentBreakdown(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load department breakdown")
	}
	recent, err := s.attendance.Recent(ctx, recentAttendanceLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load recent attendance")
	}

	summary := &models.DashboardSummary{
		SelectedDate:     dateKey,
		TotalStudents:    totalStudents,
		TotalAttendance:  totalAttendance,
		PresentCount:     present,
		AbsentCount:      totalAttendance - present,
		OverallPercent:   percentage(present, totalAttendance),
		DeptAttendance:   breakdown,
		RecentAttendance: recent,
	}

	if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
		s.logger.Warn("dashboard cache store failed", zap.Error(err))
	}
	return summary, nil
}

// ClassReport lists per-student attendance rollups, optionally narrowed by
// class and department.
func (s *ReportService) ClassReport(ctx context.Context, filter models.StudentFilter) ([]models.StudentAttendanceReport, error) {
	rows, err := s.attendance.PerStudentReport(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load class report")
	}
	for i := range rows {
		rows[i].Percentage = percentage(rows[i].Present, rows[i].TotalDays)
	}
	return rows, nil
}

// ClassReportCSV renders the class report as a CSV download.
func (s *ReportService) ClassReportCSV(ctx context.Context, filter models.StudentFilter) ([]byte, error) {
	rows, err := s.ClassReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Class", "Department", "Total Days", "Present", "Absent", "Percentage"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":       row.Name,
			"Class":      row.Class,
			"Department": row.Department,
			"Total Days": strconv.Itoa(row.TotalDays),
			"Present":    strconv.Itoa(row.Present),
			"Absent":     strconv.Itoa(row.Absent),
			"Percentage": fmt.Sprintf("%.2f", row.Percentage),
		})
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// StudentReport gathers one student's attendance, marks and task history.
func (s *ReportService) StudentReport(ctx context.Context, studentID int64) (*models.StudentReport, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	attendance, err := s.attendance.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance summary")
	}
	attendance.Percentage = percentage(attendance.Present, attendance.TotalDays)

	marks, err := s.marks.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student marks")
	}
	tasks, err := s.tasks.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student tasks")
	}

	return &models.StudentReport{
		Student:    *student,
		Attendance: *attendance,
		Marks:      marks,
		Tasks:      tasks,
	}, nil
}

// StudentReportPDF renders a student's full report as a PDF download.
func (s *ReportService) StudentReportPDF(ctx context.Context, studentID int64) ([]byte, error) {
	report, err := s.StudentReport(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := []string{
		fmt.Sprintf("Name: %s (%s)", report.Student.Name, report.Student.USN),
		fmt.Sprintf("Class: %s    Department: %s", report.Student.Class, report.Student.Department),
		fmt.Sprintf("Attendance: %d/%d days present (%.2f%%)",
			report.Attendance.Present, report.Attendance.TotalDays, report.Attendance.Percentage),
		fmt.Sprintf("Generated: %s", s.now().Format("2006-01-02 15:04")),
	}

	marksData := export.Dataset{
		Headers: []string{"Subject", "Exam", "Marks", "Max", "Date"},
	}
	for _, mark := range report.Marks {
		examDate := ""
		if mark.ExamDate != nil {
			examDate = mark.ExamDate.Format(dateLayout)
		}
		marksData.Rows = append(marksData.Rows, map[string]string{
			"Subject": mark.SubjectName,
			"Exam":    mark.ExamType,
			"Marks":   fmt.Sprintf("%.1f", mark.MarksObtained),
			"Max":     fmt.Sprintf("%.1f", mark.MaxMarks),
			"Date":    examDate,
		})
	}

	tasksData := export.Dataset{
		Headers: []string{"Task", "Due Date", "Status", "Completed"},
	}
	for _, task := range report.Tasks {
		completed := ""
		if task.CompletedDate != nil {
			completed = task.CompletedDate.Format(dateLayout)
		}
		tasksData.Rows = append(tasksData.Rows, map[string]string{
			"Task":      task.Title,
			"Due Date":  task.DueDate.Format(dateLayout),
			"Status":    string(task.Status),
			"Completed": completed,
		})
	}

	payload, err := s.pdf.Render("Student Report", summary, []export.Section{
		{Title: "Exam Marks", Data: marksData},
		{Title: "Assigned Tasks", Data: tasksData},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}
