package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type mockSummaryRepo struct {
	byStudent map[string]models.TermSummary
	batches   int
}

func (m *mockSummaryRepo) UpsertBatch(ctx context.Context, summaries []models.TermSummary) error {
	if m.byStudent == nil {
		m.byStudent = make(map[string]models.TermSummary)
	}
	m.batches++
	for _, summary := range summaries {
		m.byStudent[summary.StudentID] = summary
	}
	return nil
}

func (m *mockSummaryRepo) FindByStudentTerm(ctx context.Context, studentID, termID string) (*models.TermSummary, error) {
	summary, ok := m.byStudent[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &summary, nil
}

func (m *mockSummaryRepo) ListByClassTerm(ctx context.Context, classID, termID string) ([]models.TermSummary, error) {
	var out []models.TermSummary
	for _, summary := range m.byStudent {
		out = append(out, summary)
	}
	return out, nil
}

func (m *mockSummaryRepo) UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error {
	if _, ok := m.byStudent[studentID]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

type mockSubmittedReader struct {
	rows []models.SubjectResult
}

func (m *mockSubmittedReader) ListSubmittedByClassTerm(ctx context.Context, classID, termID string) ([]models.SubjectResult, error) {
	return m.rows, nil
}

func (m *mockSubmittedReader) ListByStudentTerm(ctx context.Context, studentID, termID string) ([]models.SubjectResult, error) {
	var out []models.SubjectResult
	for _, row := range m.rows {
		if row.StudentID == studentID {
			out = append(out, row)
		}
	}
	return out, nil
}

type mockEngineMetrics struct {
	recorded     int
	summaries    int
	lockTimeouts int
	scopes       []string
}

func (m *mockEngineMetrics) ObserveCohortRecompute(scope string, seconds float64) {
	m.scopes = append(m.scopes, scope)
}

func (m *mockEngineMetrics) IncResultsRecorded(n int) { m.recorded += n }

func (m *mockEngineMetrics) IncSummariesBuilt(n int) { m.summaries += n }

func (m *mockEngineMetrics) IncLockTimeout() { m.lockTimeouts++ }

func submittedRow(student string, total, point float64) models.SubjectResult {
	return models.SubjectResult{
		StudentID: student, ClassID: "cls1", TermID: "trm1",
		Total: total, GradePoint: point, IsSubmitted: true,
	}
}

func TestRecomputeClassAggregates(t *testing.T) {
	repo := &mockSummaryRepo{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
		submittedRow("st1", 70, 3.6),
		submittedRow("st1", 60, 2.8),
		submittedRow("st1", 55, 2.4),
		submittedRow("st1", 40, 1.2),
	}}
	svc := NewSummaryService(repo, results, openTerm(), nil, nil, 0, nil, nil, nil)

	err := svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1")
	require.NoError(t, err)

	summary := repo.byStudent["st1"]
	assert.Equal(t, 310.0, summary.TotalScore)
	assert.Equal(t, 62.0, summary.AverageScore)
	assert.Equal(t, 2.8, summary.GPA)
	assert.Equal(t, 5, summary.SubjectCount)
	assert.Equal(t, 1, summary.Position)
	assert.Equal(t, 1, summary.TotalStudents)
}

func TestRecomputeClassRanksByAverage(t *testing.T) {
	repo := &mockSummaryRepo{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
		submittedRow("st2", 85, 4.0),
		submittedRow("st3", 80, 4.0),
	}}
	svc := NewSummaryService(repo, results, openTerm(), nil, nil, 0, nil, nil, nil)

	err := svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.byStudent["st1"].Position)
	assert.Equal(t, 1, repo.byStudent["st2"].Position)
	assert.Equal(t, 3, repo.byStudent["st3"].Position)
}

func TestRecomputeClassIsIdempotent(t *testing.T) {
	repo := &mockSummaryRepo{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
		submittedRow("st2", 70, 3.6),
	}}
	svc := NewSummaryService(repo, results, openTerm(), nil, nil, 0, nil, nil, nil)

	require.NoError(t, svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1"))
	first := repo.byStudent["st1"]
	require.NoError(t, svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1"))
	second := repo.byStudent["st1"]

	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.Equal(t, first.AverageScore, second.AverageScore)
	assert.Equal(t, first.GPA, second.GPA)
	assert.Equal(t, first.Position, second.Position)
}

func TestRecomputeClassSkipsEmptyCohort(t *testing.T) {
	repo := &mockSummaryRepo{}
	svc := NewSummaryService(repo, &mockSubmittedReader{}, openTerm(), nil, nil, 0, nil, nil, nil)

	require.NoError(t, svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1"))
	assert.Zero(t, repo.batches)
}

func TestRecomputeClassRejectsLockedTerm(t *testing.T) {
	repo := &mockSummaryRepo{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
	}}
	terms := &mockTermReader{terms: map[string]models.Term{"trm1": {ID: "trm1", IsLocked: true}}}
	svc := NewSummaryService(repo, results, terms, nil, nil, 0, nil, nil, nil)

	err := svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTermLocked))
	assert.Zero(t, repo.batches)
}

func TestRecomputeClassReportsMetrics(t *testing.T) {
	repo := &mockSummaryRepo{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
		submittedRow("st2", 70, 3.6),
	}}
	metrics := &mockEngineMetrics{}
	svc := NewSummaryService(repo, results, openTerm(), nil, nil, 0, metrics, nil, nil)

	require.NoError(t, svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1"))
	assert.Equal(t, 2, metrics.summaries)
	assert.Equal(t, []string{"class"}, metrics.scopes)
}

func TestRecomputeClassCountsLockTimeout(t *testing.T) {
	locker := NewCohortLocker(20 * time.Millisecond)
	release, err := locker.Acquire(context.Background(), "summary:cls1:trm1")
	require.NoError(t, err)
	defer release()

	metrics := &mockEngineMetrics{}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
	}}
	svc := NewSummaryService(&mockSummaryRepo{}, results, openTerm(), locker, nil, 0, metrics, nil, nil)

	err = svc.RecomputeClass(context.Background(), "sch1", "cls1", "trm1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConcurrency))
	assert.Equal(t, 1, metrics.lockTimeouts)
}

func TestGetTermSummaryInsufficientData(t *testing.T) {
	svc := NewSummaryService(&mockSummaryRepo{}, &mockSubmittedReader{}, openTerm(), nil, nil, 0, nil, nil, nil)

	_, err := svc.GetTermSummary(context.Background(), "st1", "trm1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientData))
}

func TestGetTermSummaryIncludesSubjects(t *testing.T) {
	repo := &mockSummaryRepo{byStudent: map[string]models.TermSummary{
		"st1": {StudentID: "st1", TermID: "trm1", AverageScore: 62},
	}}
	results := &mockSubmittedReader{rows: []models.SubjectResult{
		submittedRow("st1", 85, 4.0),
		submittedRow("st1", 70, 3.6),
	}}
	svc := NewSummaryService(repo, results, openTerm(), nil, nil, 0, nil, nil, nil)

	out, err := svc.GetTermSummary(context.Background(), "st1", "trm1")
	require.NoError(t, err)
	assert.Equal(t, 62.0, out.Summary.AverageScore)
	assert.Len(t, out.Subjects, 2)
}

func TestUpdateRemarksUnknownSummary(t *testing.T) {
	svc := NewSummaryService(&mockSummaryRepo{}, &mockSubmittedReader{}, openTerm(), nil, nil, 0, nil, nil, nil)

	comment := "Hardworking student."
	err := svc.UpdateRemarks(context.Background(), "st1", "trm1", models.SummaryRemarksUpdate{TeacherComment: &comment})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
