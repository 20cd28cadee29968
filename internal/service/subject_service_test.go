package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-adp-api/internal/models"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects map[int64]models.Subject
	nextID   int64
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[int64]models.Subject)}
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		if filter.Course != "" && s.Course != filter.Course {
			continue
		}
		if filter.Semester > 0 && s.Semester != filter.Semester {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) Exists(ctx context.Context, name, course string, semester int, excludeID int64) (bool, error) {
	for id, s := range m.subjects {
		if id == excludeID {
			continue
		}
		if s.Name == name && s.Course == course && s.Semester == semester {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	m.nextID++
	subject.ID = m.nextID
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id int64) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) SemestersByCourse(ctx context.Context, course string) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, s := range m.subjects {
		if s.Course == course && !seen[s.Semester] {
			seen[s.Semester] = true
			out = append(out, s.Semester)
		}
	}
	return out, nil
}

func (m *mockSubjectRepo) RefsByCourseSemester(ctx context.Context, course string, semester int) ([]models.SubjectRef, error) {
	var refs []models.SubjectRef
	for _, s := range m.subjects {
		if s.Course == course && s.Semester == semester {
			refs = append(refs, models.SubjectRef{ID: s.ID, Name: s.Name})
		}
	}
	return refs, nil
}

func TestSubjectCreate(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil)

	subject, err := svc.Create(context.Background(), SubjectRequest{
		Name:     "  Financial Accounting ",
		Course:   "BCom",
		Semester: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, subject.ID)
	assert.Equal(t, "Financial Accounting", subject.Name)
}

func TestSubjectCreateDuplicateTriple(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil)

	req := SubjectRequest{Name: "Financial Accounting", Course: "BCom", Semester: 1}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateKey.Code, appErr.Code)
}

func TestSubjectSameNameDifferentSemester(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Economics", Course: "BCom", Semester: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), SubjectRequest{Name: "Economics", Course: "BCom", Semester: 2})
	require.NoError(t, err)
	assert.Len(t, repo.subjects, 2)
}

func TestSubjectCreateRequiresSemester(t *testing.T) {
	svc := NewSubjectService(newMockSubjectRepo(), nil, nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Economics", Course: "BCom"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingField.Code, appErr.Code)
}

func TestSubjectUpdateKeepsOwnTriple(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil)

	created, err := svc.Create(context.Background(), SubjectRequest{Name: "Economics", Course: "BCom", Semester: 1})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, SubjectRequest{
		Name: "Economics", Course: "BCom", Semester: 1, Description: "Micro and macro",
	})
	require.NoError(t, err)
	assert.Equal(t, "Micro and macro", updated.Description)
}

func TestSubjectLookups(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Economics", Course: "BCom", Semester: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), SubjectRequest{Name: "Statistics", Course: "BCom", Semester: 3})
	require.NoError(t, err)

	semesters, err := svc.Semesters(context.Background(), "BCom")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3}, semesters)

	refs, err := svc.Refs(context.Background(), "BCom", 3)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Statistics", refs[0].Name)
}
