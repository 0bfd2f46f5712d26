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

// GradingHandler exposes grading system configuration endpoints.
type GradingHandler struct {
	grading *service.GradingService
}

// NewGradingHandler constructs handler.
func NewGradingHandler(grading *service.GradingService) *GradingHandler {
	return &GradingHandler{grading: grading}
}

// List godoc
// @Summary List the school's grading systems
// @Tags Grading
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grading-systems [get]
func (h *GradingHandler) List(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	systems, err := h.grading.ListSystems(c.Request.Context(), schoolID(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, systems, nil)
}

// Create godoc
// @Summary Create a grading system
// @Tags Grading
// @Accept json
// @Produce json
// @Param payload body models.CreateGradingSystemRequest true "Grading system"
// @Success 201 {object} response.Envelope
// @Router /grading-systems [post]
func (h *GradingHandler) Create(c *gin.Context) {
	var req models.CreateGradingSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := middleware.CurrentClaims(c)
	system, err := h.grading.CreateSystem(c.Request.Context(), schoolID(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, system)
}

// SetDefault godoc
// @Summary Promote a grading system to the school default
// @Tags Grading
// @Produce json
// @Param id path string true "Grading system ID"
// @Success 204
// @Router /grading-systems/{id}/default [post]
func (h *GradingHandler) SetDefault(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if err := h.grading.SetDefault(c.Request.Context(), schoolID(claims), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ActiveScale godoc
// @Summary Show the grade scale in force for the school
// @Tags Grading
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grading-systems/active-scale [get]
func (h *GradingHandler) ActiveScale(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	scale, err := h.grading.ScaleForSchool(c.Request.Context(), schoolID(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale.Bands(), nil)
}
