package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushq/college-adp-api/internal/service"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
	"github.com/campushq/college-adp-api/pkg/response"
)

// LookupHandler serves the cascading dropdown data used by entry forms.
type LookupHandler struct {
	students *service.StudentService
	subjects *service.SubjectService
}

// NewLookupHandler constructs LookupHandler.
func NewLookupHandler(students *service.StudentService, subjects *service.SubjectService) *LookupHandler {
	return &LookupHandler{students: students, subjects: subjects}
}

// Options godoc
// @Summary Distinct classes and departments
// @Tags Lookups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lookups/options [get]
func (h *LookupHandler) Options(c *gin.Context) {
	options, err := h.students.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options)
}

// StudentsByDepartment godoc
// @Summary Student references for a department
// @Tags Lookups
// @Produce json
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lookups/students [get]
func (h *LookupHandler) StudentsByDepartment(c *gin.Context) {
	department := strings.TrimSpace(c.Query("department"))
	if department == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "department is required"))
		return
	}
	refs, err := h.students.ByDepartment(c.Request.Context(), department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, refs)
}

// SemestersByCourse godoc
// @Summary Semesters that have subjects for a course
// @Tags Lookups
// @Produce json
// @Param course query string true "Course"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lookups/semesters [get]
func (h *LookupHandler) SemestersByCourse(c *gin.Context) {
	course := strings.TrimSpace(c.Query("course"))
	if course == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "course is required"))
		return
	}
	semesters, err := h.subjects.Semesters(c.Request.Context(), course)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters)
}

// SubjectsByCourseSemester godoc
// @Summary Subject references for a course and semester
// @Tags Lookups
// @Produce json
// @Param course query string true "Course"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lookups/subjects [get]
func (h *LookupHandler) SubjectsByCourseSemester(c *gin.Context) {
	course := strings.TrimSpace(c.Query("course"))
	if course == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrMissingField, "course is required"))
		return
	}
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a positive integer"))
		return
	}
	refs, err := h.subjects.Refs(c.Request.Context(), course, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, refs)
}
