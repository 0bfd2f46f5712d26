package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type termServiceMock struct {
	terms   []models.Term
	term    *models.Term
	listErr error
	getErr  error
	lockErr error

	lockedBy   string
	unlockedBy string
}

func (m *termServiceMock) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	return m.terms, m.listErr
}

func (m *termServiceMock) Get(ctx context.Context, id string) (*models.Term, error) {
	return m.term, m.getErr
}

func (m *termServiceMock) Lock(ctx context.Context, termID, lockedBy string) (*models.Term, error) {
	m.lockedBy = lockedBy
	return m.term, m.lockErr
}

func (m *termServiceMock) Unlock(ctx context.Context, termID, unlockedBy string) (*models.Term, error) {
	m.unlockedBy = unlockedBy
	return m.term, m.lockErr
}

func TestTermHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &termServiceMock{terms: []models.Term{
		{ID: "trm-1", Name: "First Term", Sequence: 1},
		{ID: "trm-2", Name: "Second Term", Sequence: 2},
	}}
	h := NewTermHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/terms", nil)
	setClaims(c, models.RoleTeacher)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "First Term")
	require.Contains(t, w.Body.String(), "Second Term")
}

func TestTermHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &termServiceMock{getErr: appErrors.ErrNotFound}
	h := NewTermHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/terms/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	setClaims(c, models.RoleTeacher)

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTermHandlerLockRecordsActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &termServiceMock{term: &models.Term{ID: "trm-1", IsLocked: true}}
	h := NewTermHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/terms/trm-1/lock", nil)
	c.Params = gin.Params{{Key: "id", Value: "trm-1"}}
	setClaims(c, models.RoleSchoolAdmin)

	h.Lock(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", mockSvc.lockedBy)
	require.Contains(t, w.Body.String(), `"is_locked":true`)
}

func TestTermHandlerUnlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &termServiceMock{term: &models.Term{ID: "trm-1", IsLocked: false}}
	h := NewTermHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/terms/trm-1/unlock", nil)
	c.Params = gin.Params{{Key: "id", Value: "trm-1"}}
	setClaims(c, models.RoleSuperAdmin)

	h.Unlock(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", mockSvc.unlockedBy)
}
