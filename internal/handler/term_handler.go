package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/pkg/response"
)

type termService interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	Get(ctx context.Context, id string) (*models.Term, error)
	Lock(ctx context.Context, termID, lockedBy string) (*models.Term, error)
	Unlock(ctx context.Context, termID, unlockedBy string) (*models.Term, error)
}

// TermHandler exposes academic term endpoints.
type TermHandler struct {
	terms termService
}

// NewTermHandler constructs handler.
func NewTermHandler(terms termService) *TermHandler {
	return &TermHandler{terms: terms}
}

// List godoc
// @Summary List terms
// @Tags Terms
// @Produce json
// @Param sessionId query string false "Filter by session"
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) List(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	filter := models.TermFilter{
		SchoolID:  schoolID(claims),
		SessionID: c.Query("sessionId"),
	}
	if current := c.Query("current"); current != "" {
		value := current == "true"
		filter.IsCurrent = &value
	}
	terms, err := h.terms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// Get godoc
// @Summary Fetch one term
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) Get(c *gin.Context) {
	term, err := h.terms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Lock godoc
// @Summary Lock a term against result changes
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/lock [post]
func (h *TermHandler) Lock(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	term, err := h.terms.Lock(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Unlock godoc
// @Summary Reopen a locked term
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/unlock [post]
func (h *TermHandler) Unlock(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	term, err := h.terms.Unlock(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}
