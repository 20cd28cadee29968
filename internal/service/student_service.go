package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByUSNOrEmail(ctx context.Context, usn, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	DistinctClasses(ctx context.Context) ([]string, error)
	DistinctDepartments(ctx context.Context) ([]string, error)
	RefsByDepartment(ctx context.Context, department string) ([]models.StudentRef, error)
}

// StudentRequest holds the payload for creating or updating a student.
// Free-text fields are trimmed before validation and storage.
type StudentRequest struct {
	USN         string `json:"usn" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Phone       string `json:"phone"`
	Class       string `json:"class" validate:"required"`
	Department  string `json:"department" validate:"required"`
	ParentName  string `json:"parent_name"`
	ParentPhone string `json:"parent_phone"`
	ParentEmail string `json:"parent_email"`
}

func (r *StudentRequest) trim() {
	r.USN = strings.TrimSpace(r.USN)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Class = strings.TrimSpace(r.Class)
	r.Department = strings.TrimSpace(r.Department)
	r.ParentName = strings.TrimSpace(r.ParentName)
	r.ParentPhone = strings.TrimSpace(r.ParentPhone)
	r.ParentEmail = strings.TrimSpace(r.ParentEmail)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns all students matching the filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The usn/email uniqueness check runs
// before the insert; the database constraint backs it up under races.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	req.trim()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "usn, name, email, class and department are required")
	}

	exists, err := s.repo.ExistsByUSNOrEmail(ctx, req.USN, req.Email, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check usn/email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "usn or email already exists")
	}

	student := &models.Student{
		USN:         req.USN,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Class:       req.Class,
		Department:  req.Department,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		ParentEmail: req.ParentEmail,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "usn or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.Int64("id", student.ID), zap.String("usn", student.USN))
	return student, nil
}

// Update modifies an existing student, rejecting usn/email values already
// used by a different row.
func (s *StudentService) Update(ctx context.Context, id int64, req StudentRequest) (*models.Student, error) {
	req.trim()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, "usn, name, email, class and department are required")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}

	exists, err := s.repo.ExistsByUSNOrEmail(ctx, req.USN, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check usn/email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "usn or email already in use by another student")
	}

	student := &models.Student{
		ID:          id,
		USN:         req.USN,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Class:       req.Class,
		Department:  req.Department,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		ParentEmail: req.ParentEmail,
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "usn or email already in use by another student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and, through the database, all of their
// attendance, assignment and mark rows.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.Int64("id", id))
	return nil
}

// Options returns the distinct class and department values for filter
// widgets.
func (s *StudentService) Options(ctx context.Context) (*models.ClassDepartmentOptions, error) {
	classes, err := s.repo.DistinctClasses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load classes")
	}
	departments, err := s.repo.DistinctDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load departments")
	}
	return &models.ClassDepartmentOptions{Classes: classes, Departments: departments}, nil
}

// ByDepartment returns compact student references for one department.
func (s *StudentService) ByDepartment(ctx context.Context, department string) ([]models.StudentRef, error) {
	refs, err := s.repo.RefsByDepartment(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load students")
	}
	return refs, nil
}
