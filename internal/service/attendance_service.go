package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type attendanceRepository interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	MarkedStudentIDs(ctx context.Context, date time.Time) ([]int64, error)
	History(ctx context.Context) ([]models.AttendanceEvent, error)
	StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error)
}

type attendanceStudentResolver interface {
	IDsByFilter(ctx context.Context, filter models.StudentFilter) ([]int64, error)
}

// MarkAttendanceRequest marks one student for one date.
type MarkAttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"required,min=1"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

// BulkAttendanceRequest marks a filtered student set for one date.
// Statuses maps student IDs to their status; students missing from the map
// default to Present.
type BulkAttendanceRequest struct {
	Date       string           `json:"date" validate:"required"`
	Class      string           `json:"class"`
	Department string           `json:"department"`
	Statuses   map[int64]string `json:"statuses"`
}

// AttendanceService handles attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentResolver
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentResolver, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Mark records attendance for one (student, date) pair. An existing record
// for the pair is a conflict; it is never overwritten. The date defaults to
// today when absent.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "student is required")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present or Absent")
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	record := &models.AttendanceRecord{StudentID: req.StudentID, Date: date, Status: status}
	if err := s.repo.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "attendance for this student on this date already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to mark attendance")
	}

	s.metrics.RecordAttendanceMarked(1)
	s.invalidateDashboard(ctx)
	return record, nil
}

// BulkMark marks every student matched by the filter for one date. The
// already-marked set is resolved first so only the delta is inserted;
// conflicts under concurrent marking are tallied, never fatal.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkAttendanceRequest) (*models.BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "date is required")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	// Every supplied status is checked before the first insert so a bad
	// entry cannot leave a partially written batch behind.
	for _, raw := range req.Statuses {
		if !models.AttendanceStatus(raw).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present or Absent")
		}
	}

	ids, err := s.students.IDsByFilter(ctx, models.StudentFilter{Class: req.Class, Department: req.Department})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to resolve students")
	}

	marked, err := s.repo.MarkedStudentIDs(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load marked students")
	}
	markedSet := make(map[int64]struct{}, len(marked))
	for _, id := range marked {
		markedSet[id] = struct{}{}
	}

	result := &models.BulkMarkResult{}
	for _, id := range ids {
		if _, ok := markedSet[id]; ok {
			result.AlreadyMarked++
			continue
		}

		status := models.AttendanceStatusPresent
		if raw, ok := req.Statuses[id]; ok {
			status = models.AttendanceStatus(raw)
		}

		record := &models.AttendanceRecord{StudentID: id, Date: date, Status: status}
		if err := s.repo.Insert(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.AlreadyMarked++
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to mark attendance")
		}
		result.Inserted++
	}

	s.metrics.RecordAttendanceMarked(result.Inserted)
	s.invalidateDashboard(ctx)
	s.logger.Info("bulk attendance marked",
		zap.String("date", req.Date),
		zap.Int("inserted", result.Inserted),
		zap.Int("already_marked", result.AlreadyMarked))
	return result, nil
}

// History returns all attendance events, most recent first.
func (s *AttendanceService) History(ctx context.Context) ([]models.AttendanceEvent, error) {
	events, err := s.repo.History(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance history")
	}
	return events, nil
}

// StudentSummary returns one student's attendance rollup with the
// percentage already computed.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID int64) (*models.AttendanceSummary, error) {
	summary, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance summary")
	}
	summary.Percentage = percentage(summary.Present, summary.TotalDays)
	return summary, nil
}

func (s *AttendanceService) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
