package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/service"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
	"github.com/schoolware/result-portal-api/pkg/response"
)

// ReportHandler exposes report card endpoints.
type ReportHandler struct {
	reports  *service.ReportService
	students *service.StudentService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, students *service.StudentService) *ReportHandler {
	return &ReportHandler{reports: reports, students: students}
}

// StudentCard godoc
// @Summary Download one student's report card PDF
// @Tags Reports
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param termId path string true "Term ID"
// @Success 200 {file} binary
// @Router /reports/students/{studentId}/terms/{termId} [get]
func (h *ReportHandler) StudentCard(c *gin.Context) {
	studentID := c.Param("studentId")
	termID := c.Param("termId")

	claims := middleware.CurrentClaims(c)
	if err := h.students.AuthorizeView(c.Request.Context(), claims, studentID); err != nil {
		response.Error(c, err)
		return
	}

	pdf, err := h.reports.StudentReportCard(c.Request.Context(), studentID, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report-card.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// EnqueueClass godoc
// @Summary Queue report card generation for a whole class
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.ClassReportRequest true "Class and term"
// @Success 202 {object} response.Envelope
// @Router /reports/classes [post]
func (h *ReportHandler) EnqueueClass(c *gin.Context) {
	var req models.ClassReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := middleware.CurrentClaims(c)
	job, err := h.reports.EnqueueClassReportCards(c.Request.Context(), schoolID(claims), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// JobStatus godoc
// @Summary Check a report job's status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/jobs/{id} [get]
func (h *ReportHandler) JobStatus(c *gin.Context) {
	job, err := h.reports.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished report archive via signed token
// @Tags Reports
// @Produce application/zip
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, name, err := h.reports.OpenDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
