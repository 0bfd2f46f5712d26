package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
	"github.com/schoolware/result-portal-api/pkg/response"
)

type summaryService interface {
	GetTermSummary(ctx context.Context, studentID, termID string) (*models.StudentTermResult, error)
	ListClass(ctx context.Context, classID, termID string) ([]models.TermSummary, error)
	RecomputeClass(ctx context.Context, schoolID, classID, termID string) error
	UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error
}

type studentAccess interface {
	AuthorizeView(ctx context.Context, claims *models.JWTClaims, studentID string) error
}

// SummaryHandler exposes term summary endpoints.
type SummaryHandler struct {
	summaries summaryService
	students  studentAccess
}

// NewSummaryHandler constructs handler.
func NewSummaryHandler(summaries summaryService, students studentAccess) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, students: students}
}

// StudentTerm godoc
// @Summary Fetch a student's term result
// @Tags Summaries
// @Produce json
// @Param studentId path string true "Student ID"
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /summaries/students/{studentId}/terms/{termId} [get]
func (h *SummaryHandler) StudentTerm(c *gin.Context) {
	studentID := c.Param("studentId")
	termID := c.Param("termId")

	claims := middleware.CurrentClaims(c)
	if err := h.students.AuthorizeView(c.Request.Context(), claims, studentID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.summaries.GetTermSummary(c.Request.Context(), studentID, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ClassTerm godoc
// @Summary List a class's term summaries
// @Tags Summaries
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /summaries/classes/{classId}/terms/{termId} [get]
func (h *SummaryHandler) ClassTerm(c *gin.Context) {
	summaries, err := h.summaries.ListClass(c.Request.Context(), c.Param("classId"), c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Recompute godoc
// @Summary Recompute a class's term summaries
// @Tags Summaries
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /summaries/classes/{classId}/terms/{termId}/recompute [post]
func (h *SummaryHandler) Recompute(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if err := h.summaries.RecomputeClass(c.Request.Context(), schoolID(claims), c.Param("classId"), c.Param("termId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "recomputed"}, nil)
}

// UpdateRemarks godoc
// @Summary Update staff remarks on a term summary
// @Tags Summaries
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param termId path string true "Term ID"
// @Param payload body models.SummaryRemarksUpdate true "Remarks"
// @Success 204
// @Router /summaries/students/{studentId}/terms/{termId}/remarks [patch]
func (h *SummaryHandler) UpdateRemarks(c *gin.Context) {
	var update models.SummaryRemarksUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.summaries.UpdateRemarks(c.Request.Context(), c.Param("studentId"), c.Param("termId"), update); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
