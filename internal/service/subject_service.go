package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	Exists(ctx context.Context, name, course string, semester int, excludeID int64) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
	SemestersByCourse(ctx context.Context, course string) ([]int, error)
	RefsByCourseSemester(ctx context.Context, course string, semester int) ([]models.SubjectRef, error)
}

// SubjectRequest holds the payload for creating or updating a subject.
type SubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Course      string `json:"course" validate:"required"`
	Semester    int    `json:"semester" validate:"required,min=1"`
	Description string `json:"description"`
}

func (r *SubjectRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Course = strings.TrimSpace(r.Course)
	r.Description = strings.TrimSpace(r.Description)
}

// SubjectService handles subject use-cases.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects matching the filter.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create stores a new subject after checking (name, course, semester)
// uniqueness; the unique index backs the check under races.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	req.trim()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "subject name, course and semester are required")
	}

	exists, err := s.repo.Exists(ctx, req.Name, req.Course, req.Semester, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "subject with this name, course and semester already exists")
	}

	subject := &models.Subject{Name: req.Name, Course: req.Course, Semester: req.Semester, Description: req.Description}
	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "subject with this name, course and semester already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies an existing subject, rejecting a (name, course,
// semester) triple already used by a different row.
func (s *SubjectService) Update(ctx context.Context, id int64, req SubjectRequest) (*models.Subject, error) {
	req.trim()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "subject name, course and semester are required")
	}

	exists, err := s.repo.Exists(ctx, req.Name, req.Course, req.Semester, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "subject with this name, course and semester already exists")
	}

	subject := &models.Subject{ID: id, Name: req.Name, Course: req.Course, Semester: req.Semester, Description: req.Description}
	if err := s.repo.Update(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "subject with this name, course and semester already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject and, through the database, its dependent marks.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete subject")
	}
	return nil
}

// Semesters returns the distinct semesters with subjects for a course.
func (s *SubjectService) Semesters(ctx context.Context, course string) ([]int, error) {
	semesters, err := s.repo.SemestersByCourse(ctx, course)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load semesters")
	}
	return semesters, nil
}

// Refs returns compact subject references for one (course, semester) pair.
func (s *SubjectService) Refs(ctx context.Context, course string, semester int) ([]models.SubjectRef, error) {
	refs, err := s.repo.RefsByCourseSemester(ctx, course, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load subjects")
	}
	return refs, nil
}
