package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type attendanceKey struct {
	studentID int64
	date      string
}

type mockAttendanceRepo struct {
	records map[attendanceKey]models.AttendanceStatus
	history []models.AttendanceEvent
	summary *models.AttendanceSummary
	err     error
}

func (m *mockAttendanceRepo) key(studentID int64, date time.Time) attendanceKey {
	return attendanceKey{studentID: studentID, date: date.Format("2006-01-02")}
}

func (m *mockAttendanceRepo) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	if m.err != nil {
		return m.err
	}
	if m.records == nil {
		m.records = make(map[attendanceKey]models.AttendanceStatus)
	}
	k := m.key(record.StudentID, record.Date)
	if _, ok := m.records[k]; ok {
		return repository.ErrDuplicate
	}
	m.records[k] = record.Status
	record.ID = int64(len(m.records))
	return nil
}

func (m *mockAttendanceRepo) MarkedStudentIDs(ctx context.Context, date time.Time) ([]int64, error) {
	var ids []int64
	day := date.Format("2006-01-02")
	for k := range m.records {
		if k.date == day {
			ids = append(ids, k.studentID)
		}
	}
	return ids, nil
}

func (m *mockAttendanceRepo) History(ctx context.Context) ([]models.AttendanceEvent, error) {
	return m.history, m.err
}

func (m *mockAttendanceRepo) StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

type mockStudentResolver struct {
	ids []int64
	err error
}

func (m *mockStudentResolver) IDsByFilter(ctx context.Context, filter models.StudentFilter) ([]int64, error) {
	return m.ids, m.err
}

func TestAttendanceMarkDefaultsDateToToday(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockStudentResolver{}, nil, nil, nil, nil)
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	record, err := svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: 1, Status: "Present"})
	require.NoError(t, err)
	assert.Equal(t, fixed, record.Date)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestAttendanceMarkRejectsBadStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockStudentResolver{}, nil, nil, nil, nil)

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: 1, Status: "Late"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAttendanceMarkConflictOnRemark(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockStudentResolver{}, nil, nil, nil, nil)

	req := MarkAttendanceRequest{StudentID: 1, Date: "2026-03-10", Status: "Present"}
	_, err := svc.Mark(context.Background(), req)
	require.NoError(t, err)

	req.Status = "Absent"
	_, err = svc.Mark(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateKey.Code, appErr.Code)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, models.AttendanceStatusPresent, repo.records[repo.key(1, day)])
}

func TestAttendanceBulkMarkSkipsAlreadyMarked(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockStudentResolver{ids: []int64{1, 2, 3}}, nil, nil, nil, nil)

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{StudentID: 2, Date: "2026-03-10", Status: "Absent"})
	require.NoError(t, err)

	result, err := svc.BulkMark(context.Background(), BulkAttendanceRequest{
		Date:     "2026-03-10",
		Statuses: map[int64]string{3: "Absent"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.AlreadyMarked)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	// student 2 keeps its original status
	assert.Equal(t, models.AttendanceStatusAbsent, repo.records[repo.key(2, day)])
	// unlisted student defaults to Present
	assert.Equal(t, models.AttendanceStatusPresent, repo.records[repo.key(1, day)])
	assert.Equal(t, models.AttendanceStatusAbsent, repo.records[repo.key(3, day)])
}

func TestAttendanceBulkMarkIdempotent(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockStudentResolver{ids: []int64{1, 2}}, nil, nil, nil, nil)

	req := BulkAttendanceRequest{Date: "2026-03-10"}
	first, err := svc.BulkMark(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := svc.BulkMark(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.AlreadyMarked)
}

func TestAttendanceBulkMarkBadStatusWritesNothing(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockStudentResolver{ids: []int64{1, 2, 3}}, nil, nil, nil, nil)

	_, err := svc.BulkMark(context.Background(), BulkAttendanceRequest{
		Date:     "2026-05-01",
		Statuses: map[int64]string{2: "Bogus"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	// the batch is rejected before any row is written
	assert.Empty(t, repo.records)
}

func TestAttendanceBulkMarkRequiresDate(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockStudentResolver{}, nil, nil, nil, nil)

	_, err := svc.BulkMark(context.Background(), BulkAttendanceRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingField.Code, appErr.Code)
}

func TestAttendanceStudentSummaryPercentage(t *testing.T) {
	repo := &mockAttendanceRepo{summary: &models.AttendanceSummary{TotalDays: 4, Present: 3, Absent: 1}}
	svc := NewAttendanceService(repo, &mockStudentResolver{}, nil, nil, nil, nil)

	summary, err := svc.StudentSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 75.0, summary.Percentage)
}

func TestAttendanceStudentSummaryZeroDays(t *testing.T) {
	repo := &mockAttendanceRepo{summary: &models.AttendanceSummary{}}
	svc := NewAttendanceService(repo, &mockStudentResolver{}, nil, nil, nil, nil)

	summary, err := svc.StudentSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Percentage)
}
