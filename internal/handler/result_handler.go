package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/service"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
	"github.com/schoolware/result-portal-api/pkg/response"
)

// ResultHandler exposes subject result entry and listing endpoints.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler constructs handler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// Record godoc
// @Summary Record one student's subject scores
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body models.RecordResultRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Record(c *gin.Context) {
	var req models.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := middleware.CurrentClaims(c)
	result, err := h.results.Record(c.Request.Context(), schoolID(claims), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Batch godoc
// @Summary Record scores for many students of one cohort
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body models.BatchRecordRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Router /results/batch [post]
func (h *ResultHandler) Batch(c *gin.Context) {
	var req models.BatchRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := middleware.CurrentClaims(c)
	resp, err := h.results.BatchRecord(c.Request.Context(), schoolID(claims), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Submit godoc
// @Summary Submit result rows for summary inclusion
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body models.SubmitResultsRequest true "Submit payload"
// @Success 200 {object} response.Envelope
// @Router /results/submit [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	var req models.SubmitResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := middleware.CurrentClaims(c)
	affected, err := h.results.Submit(c.Request.Context(), schoolID(claims), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submitted": affected}, nil)
}

// List godoc
// @Summary List result rows
// @Tags Results
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param classId query string false "Filter by class"
// @Param termId query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	filter := models.ResultFilter{
		SchoolID:  schoolID(claims),
		StudentID: c.Query("studentId"),
		SubjectID: c.Query("subjectId"),
		ClassID:   c.Query("classId"),
		TermID:    c.Query("termId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 50),
	}
	if submitted := c.Query("submitted"); submitted != "" {
		value := submitted == "true"
		filter.Submitted = &value
	}
	results, pagination, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination)
}

// Get godoc
// @Summary Fetch one result row
// @Tags Results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	result, err := h.results.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
