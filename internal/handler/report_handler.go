package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/service"
	"github.com/campushq/college-adp-api/pkg/response"
)

// ReportHandler exposes the dashboard and reporting endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportFilter(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		Class:      strings.TrimSpace(c.Query("class")),
		Department: strings.TrimSpace(c.Query("department")),
	}
}

// Dashboard godoc
// @Summary Landing-page summary for a date
// @Tags Reports
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reports.Dashboard(c.Request.Context(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// ClassReport godoc
// @Summary Per-student attendance report, optionally filtered
// @Tags Reports
// @Produce json
// @Param class query string false "Filter by class"
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/class [get]
func (h *ReportHandler) ClassReport(c *gin.Context) {
	rows, err := h.reports.ClassReport(c.Request.Context(), reportFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// ClassReportCSV godoc
// @Summary Class report as a CSV download
// @Tags Reports
// @Produce text/csv
// @Param class query string false "Filter by class"
// @Param department query string false "Filter by department"
// @Success 200 {string} string "CSV payload"
// @Security BearerAuth
// @Router /reports/class/export [get]
func (h *ReportHandler) ClassReportCSV(c *gin.Context) {
	payload, err := h.reports.ClassReportCSV(c.Request.Context(), reportFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="class_report.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// StudentReport godoc
// @Summary Full report for one student
// @Tags Reports
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/students/{id} [get]
func (h *ReportHandler) StudentReport(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.StudentReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// StudentReportPDF godoc
// @Summary Full report for one student as a PDF download
// @Tags Reports
// @Produce application/pdf
// @Param id path int true "Student ID"
// @Success 200 {string} string "PDF payload"
// @Security BearerAuth
// @Router /reports/students/{id}/export [get]
func (h *ReportHandler) StudentReportPDF(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.reports.StudentReportPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="student_report_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", payload)
}
