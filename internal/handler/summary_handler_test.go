package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/middleware"
	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type summaryServiceMock struct {
	termResult    *models.StudentTermResult
	termResultErr error
	classRows     []models.TermSummary
	classErr      error
	recomputeErr  error
	remarksErr    error

	recomputeCalls int
}

func (m *summaryServiceMock) GetTermSummary(ctx context.Context, studentID, termID string) (*models.StudentTermResult, error) {
	return m.termResult, m.termResultErr
}

func (m *summaryServiceMock) ListClass(ctx context.Context, classID, termID string) ([]models.TermSummary, error) {
	return m.classRows, m.classErr
}

func (m *summaryServiceMock) RecomputeClass(ctx context.Context, schoolID, classID, termID string) error {
	m.recomputeCalls++
	return m.recomputeErr
}

func (m *summaryServiceMock) UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error {
	return m.remarksErr
}

type studentAccessMock struct {
	err error
}

func (m *studentAccessMock) AuthorizeView(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	return m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func setClaims(c *gin.Context, role models.UserRole) {
	school := "sch-1"
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", SchoolID: &school, Role: role})
}

func TestSummaryHandlerStudentTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{
		termResult: &models.StudentTermResult{
			Summary: models.TermSummary{StudentID: "stu-1", TermID: "trm-1", AverageScore: 68.5, Position: 3},
		},
	}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{})

	c, w := newGinContext(http.MethodGet, "/summaries/students/stu-1/terms/trm-1", nil)
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleStudent)

	h.StudentTerm(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"position":3`)
}

func TestSummaryHandlerStudentTermForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{err: appErrors.ErrForbidden})

	c, w := newGinContext(http.MethodGet, "/summaries/students/stu-2/terms/trm-1", nil)
	c.Params = gin.Params{{Key: "studentId", Value: "stu-2"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleStudent)

	h.StudentTerm(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSummaryHandlerStudentTermNoData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{termResultErr: appErrors.ErrInsufficientData}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{})

	c, w := newGinContext(http.MethodGet, "/summaries/students/stu-1/terms/trm-1", nil)
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleParent)

	h.StudentTerm(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "INSUFFICIENT_DATA")
}

func TestSummaryHandlerRecompute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{})

	c, w := newGinContext(http.MethodPost, "/summaries/classes/cls-1/terms/trm-1/recompute", nil)
	c.Params = gin.Params{{Key: "classId", Value: "cls-1"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleSchoolAdmin)

	h.Recompute(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, mockSvc.recomputeCalls)
}

func TestSummaryHandlerRecomputeBusy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{recomputeErr: appErrors.ErrConcurrency}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{})

	c, w := newGinContext(http.MethodPost, "/summaries/classes/cls-1/terms/trm-1/recompute", nil)
	c.Params = gin.Params{{Key: "classId", Value: "cls-1"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleSchoolAdmin)

	h.Recompute(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSummaryHandlerUpdateRemarks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &summaryServiceMock{}
	h := NewSummaryHandler(mockSvc, &studentAccessMock{})

	comment := "Hardworking student, keep it up"
	payload, _ := json.Marshal(models.SummaryRemarksUpdate{TeacherComment: &comment})
	c, w := newGinContext(http.MethodPatch, "/summaries/students/stu-1/terms/trm-1/remarks", payload)
	c.Params = gin.Params{{Key: "studentId", Value: "stu-1"}, {Key: "termId", Value: "trm-1"}}
	setClaims(c, models.RoleTeacher)

	h.UpdateRemarks(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}
