package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type markRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	Update(ctx context.Context, mark *models.Mark) (int, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]models.MarkDetail, error)
	HistoryByStudent(ctx context.Context, studentID int64) ([]models.StudentMarkHistory, error)
}

// MarkRequest holds the payload for creating or updating one mark entry.
// MarksObtained and MaxMarks are pointers so a missing score is
// distinguishable from zero.
type MarkRequest struct {
	StudentID     int64    `json:"student_id" validate:"required,min=1"`
	SubjectID     int64    `json:"subject_id" validate:"required,min=1"`
	ExamType      string   `json:"exam_type" validate:"required"`
	MarksObtained *float64 `json:"marks_obtained" validate:"required"`
	MaxMarks      *float64 `json:"max_marks" validate:"required"`
	ExamDate      string   `json:"exam_date"`
	Remarks       string   `json:"remarks"`
}

// BulkMarksRequest carries parallel sequences for one exam sitting.
// Scores arrive as raw strings straight off the entry grid; blank entries
// mean the student was not scored.
type BulkMarksRequest struct {
	SubjectID     int64    `json:"subject_id" validate:"required,min=1"`
	ExamType      string   `json:"exam_type" validate:"required"`
	ExamDate      string   `json:"exam_date"`
	Remarks       string   `json:"remarks"`
	StudentIDs    []int64  `json:"student_ids"`
	MarksObtained []string `json:"marks_obtained"`
	MaxMarks      []string `json:"max_marks"`
}

// MarkService handles exam mark use-cases.
type MarkService struct {
	repo      markRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarkService constructs the mark service.
func NewMarkService(repo markRepository, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{repo: repo, validator: validate, logger: logger}
}

// Create stores one mark entry. Repeated entries for the same
// (student, subject, exam_type) are accepted by design.
func (s *MarkService) Create(ctx context.Context, req MarkRequest) (*models.Mark, error) {
	mark, err := s.buildMark(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create mark")
	}
	return mark, nil
}

// BulkCreate inserts one mark per index position where both scores are
// present; positions with a blank or malformed score are skipped and
// tallied, never fatal.
func (s *MarkService) BulkCreate(ctx context.Context, req BulkMarksRequest) (*models.BulkMarksResult, error) {
	req.ExamType = strings.TrimSpace(req.ExamType)
	req.Remarks = strings.TrimSpace(req.Remarks)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "subject and exam type are required")
	}

	examDate, err := s.parseOptionalDate(req.ExamDate)
	if err != nil {
		return nil, err
	}
	examType := req.ExamType
	remarks := req.Remarks

	result := &models.BulkMarksResult{}
	for i, studentID := range req.StudentIDs {
		obtained, okObtained := scoreAt(req.MarksObtained, i)
		max, okMax := scoreAt(req.MaxMarks, i)
		if !okObtained || !okMax {
			result.Skipped++
			continue
		}

		mark := &models.Mark{
			StudentID:     studentID,
			SubjectID:     req.SubjectID,
			ExamType:      examType,
			MarksObtained: obtained,
			MaxMarks:      max,
			ExamDate:      examDate,
			Remarks:       remarks,
		}
		if err := s.repo.Create(ctx, mark); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create mark")
		}
		result.Inserted++
	}

	s.logger.Info("bulk marks entered",
		zap.Int64("subject_id", req.SubjectID),
		zap.String("exam_type", examType),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// Update modifies one mark entry.
func (s *MarkService) Update(ctx context.Context, id int64, req MarkRequest) (*models.Mark, error) {
	mark, err := s.buildMark(req)
	if err != nil {
		return nil, err
	}
	mark.ID = id

	affected, err := s.repo.Update(ctx, mark)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update mark")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mark not found")
	}
	return mark, nil
}

// Delete removes one mark entry.
func (s *MarkService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete mark")
	}
	return nil
}

// List returns every mark with student and subject metadata.
func (s *MarkService) List(ctx context.Context) ([]models.MarkDetail, error) {
	marks, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list marks")
	}
	return marks, nil
}

// ListByStudent returns one student's marks ordered for report display.
func (s *MarkService) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentMarkHistory, error) {
	marks, err := s.repo.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student marks")
	}
	return marks, nil
}

func (s *MarkService) buildMark(req MarkRequest) (*models.Mark, error) {
	req.ExamType = strings.TrimSpace(req.ExamType)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "student, subject, exam type and both marks are required")
	}
	examDate, err := s.parseOptionalDate(req.ExamDate)
	if err != nil {
		return nil, err
	}
	return &models.Mark{
		StudentID:     req.StudentID,
		SubjectID:     req.SubjectID,
		ExamType:      req.ExamType,
		MarksObtained: *req.MarksObtained,
		MaxMarks:      *req.MaxMarks,
		ExamDate:      examDate,
		Remarks:       strings.TrimSpace(req.Remarks),
	}, nil
}

func (s *MarkService) parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// scoreAt reads the i-th score of a parallel sequence. Short sequences and
// blank or malformed entries read as absent.
func scoreAt(values []string, i int) (float64, bool) {
	if i >= len(values) {
		return 0, false
	}
	raw := strings.TrimSpace(values[i])
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
