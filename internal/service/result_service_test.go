package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/grading"
	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type mockResultRepo struct {
	rows   map[string]models.SubjectResult
	nextID int
}

func (m *mockResultRepo) key(r models.SubjectResult) string {
	return r.StudentID + "|" + r.SubjectID + "|" + r.TermID
}

func (m *mockResultRepo) FindByID(ctx context.Context, id string) (*models.SubjectResult, error) {
	for _, row := range m.rows {
		if row.ID == id {
			out := row
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, int, error) {
	var out []models.SubjectResult
	for _, row := range m.rows {
		if filter.StudentID != "" && row.StudentID != filter.StudentID {
			continue
		}
		if filter.TermID != "" && row.TermID != filter.TermID {
			continue
		}
		out = append(out, row)
	}
	return out, len(out), nil
}

func (m *mockResultRepo) Upsert(ctx context.Context, result *models.SubjectResult) error {
	if m.rows == nil {
		m.rows = make(map[string]models.SubjectResult)
	}
	key := m.key(*result)
	if existing, ok := m.rows[key]; ok {
		result.ID = existing.ID
		result.IsSubmitted = existing.IsSubmitted
	} else {
		m.nextID++
		result.ID = string(rune('a' + m.nextID))
	}
	m.rows[key] = *result
	return nil
}

func (m *mockResultRepo) FetchCohort(ctx context.Context, subjectID, classID, termID string) ([]models.SubjectResult, error) {
	var out []models.SubjectResult
	for _, row := range m.rows {
		if row.SubjectID == subjectID && row.ClassID == classID && row.TermID == termID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockResultRepo) SaveDerived(ctx context.Context, results []models.SubjectResult) error {
	for _, row := range results {
		m.rows[m.key(row)] = row
	}
	return nil
}

func (m *mockResultRepo) MarkSubmitted(ctx context.Context, subjectID, classID, termID, submittedBy string, resultIDs []string) (int64, error) {
	var affected int64
	wanted := make(map[string]bool, len(resultIDs))
	for _, id := range resultIDs {
		wanted[id] = true
	}
	for key, row := range m.rows {
		if row.SubjectID != subjectID || row.ClassID != classID || row.TermID != termID {
			continue
		}
		if len(resultIDs) > 0 && !wanted[row.ID] {
			continue
		}
		if !row.IsSubmitted {
			row.IsSubmitted = true
			m.rows[key] = row
			affected++
		}
	}
	return affected, nil
}

type mockTermReader struct {
	terms map[string]models.Term
}

func (m *mockTermReader) FindByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := m.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &term, nil
}

type mockScaleProvider struct{}

func (m *mockScaleProvider) ScaleForSchool(ctx context.Context, schoolID string) (*grading.Scale, error) {
	return grading.DefaultScale(), nil
}

type mockRecomputer struct {
	calls int
}

func (m *mockRecomputer) RecomputeClass(ctx context.Context, schoolID, classID, termID string) error {
	m.calls++
	return nil
}

func newResultService(repo *mockResultRepo, terms *mockTermReader, summaries *mockRecomputer) *ResultService {
	return NewResultService(repo, terms, &mockScaleProvider{}, summaries, nil, nil, nil, nil)
}

func openTerm() *mockTermReader {
	return &mockTermReader{terms: map[string]models.Term{"trm1": {ID: "trm1"}}}
}

func validRecord(student string, ca1, ca2, exam float64) models.RecordResultRequest {
	return models.RecordResultRequest{
		StudentID: student,
		SubjectID: "5f0c3a54-9a7e-4f8e-9c31-111111111111",
		ClassID:   "5f0c3a54-9a7e-4f8e-9c31-222222222222",
		TermID:    "trm1",
		CA1:       ca1,
		CA2:       ca2,
		Exam:      exam,
	}
}

func TestRecordComputesDerivedFields(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, openTerm(), &mockRecomputer{})

	req := validRecord("5f0c3a54-9a7e-4f8e-9c31-333333333333", 9, 8, 68)
	result, err := svc.Record(context.Background(), "sch1", "t1", req)
	require.NoError(t, err)

	assert.Equal(t, 85.0, result.Total)
	assert.Equal(t, "A1", result.Grade)
	assert.Equal(t, 4.0, result.GradePoint)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, 85.0, result.ClassAverage)
}

func TestRecordTiesShareRankAndNextSkips(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, openTerm(), &mockRecomputer{})

	students := []struct {
		id   string
		exam float64
	}{
		{"5f0c3a54-9a7e-4f8e-9c31-000000000001", 68}, // 85
		{"5f0c3a54-9a7e-4f8e-9c31-000000000002", 68}, // 85
		{"5f0c3a54-9a7e-4f8e-9c31-000000000003", 63}, // 80
	}
	var last *models.SubjectResult
	for _, st := range students {
		result, err := svc.Record(context.Background(), "sch1", "t1", validRecord(st.id, 9, 8, st.exam))
		require.NoError(t, err)
		last = result
	}

	assert.Equal(t, 3, last.Position)
	cohort, err := repo.FetchCohort(context.Background(), "5f0c3a54-9a7e-4f8e-9c31-111111111111", "5f0c3a54-9a7e-4f8e-9c31-222222222222", "trm1")
	require.NoError(t, err)
	positions := map[float64][]int{}
	for _, row := range cohort {
		positions[row.Total] = append(positions[row.Total], row.Position)
	}
	assert.ElementsMatch(t, []int{1, 1}, positions[85.0])
	assert.ElementsMatch(t, []int{3}, positions[80.0])
}

func TestRecordClassAverageSpansWholeCohort(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, openTerm(), &mockRecomputer{})

	_, err := svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 68)) // 85
	require.NoError(t, err)
	result, err := svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000002", 7, 6, 57)) // 70
	require.NoError(t, err)

	assert.Equal(t, 77.5, result.ClassAverage)
}

func TestRecordRejectsLockedTerm(t *testing.T) {
	repo := &mockResultRepo{}
	terms := &mockTermReader{terms: map[string]models.Term{"trm1": {ID: "trm1", IsLocked: true}}}
	svc := newResultService(repo, terms, &mockRecomputer{})

	_, err := svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 68))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTermLocked))
	assert.Empty(t, repo.rows)
}

func TestRecordRejectsOutOfBoundsScores(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, openTerm(), &mockRecomputer{})

	_, err := svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 11, 8, 68))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 81))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRecordTriggersSummaryOnlyWhenSubmitted(t *testing.T) {
	repo := &mockResultRepo{}
	summaries := &mockRecomputer{}
	svc := newResultService(repo, openTerm(), summaries)

	req := validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 68)
	_, err := svc.Record(context.Background(), "sch1", "t1", req)
	require.NoError(t, err)
	assert.Equal(t, 0, summaries.calls)

	// Submit then re-enter the scores: the correction must flow through.
	_, err = svc.Submit(context.Background(), "sch1", "t1", models.SubmitResultsRequest{
		SubjectID: req.SubjectID, ClassID: req.ClassID, TermID: req.TermID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summaries.calls)

	_, err = svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 5, 5, 40))
	require.NoError(t, err)
	assert.Equal(t, 2, summaries.calls)
}

func TestBatchRecordReportsRowFailures(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, openTerm(), &mockRecomputer{})

	resp, err := svc.BatchRecord(context.Background(), "sch1", "t1", models.BatchRecordRequest{
		SubjectID: "5f0c3a54-9a7e-4f8e-9c31-111111111111",
		ClassID:   "5f0c3a54-9a7e-4f8e-9c31-222222222222",
		TermID:    "trm1",
		Entries: []models.BatchScoreEntry{
			{StudentID: "5f0c3a54-9a7e-4f8e-9c31-000000000001", CA1: 9, CA2: 8, Exam: 68},
			{StudentID: "5f0c3a54-9a7e-4f8e-9c31-000000000002", CA1: 9, CA2: 8, Exam: 99},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Recorded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "5f0c3a54-9a7e-4f8e-9c31-000000000002", resp.Errors[0].StudentID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Results[0].Position)
}

func TestRecordCountsRecordedRows(t *testing.T) {
	repo := &mockResultRepo{}
	metrics := &mockEngineMetrics{}
	svc := NewResultService(repo, openTerm(), &mockScaleProvider{}, &mockRecomputer{}, nil, metrics, nil, nil)

	_, err := svc.Record(context.Background(), "sch1", "t1", validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 68))
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.recorded)

	// Only rows that were actually stored count.
	resp, err := svc.BatchRecord(context.Background(), "sch1", "t1", models.BatchRecordRequest{
		SubjectID: "5f0c3a54-9a7e-4f8e-9c31-111111111111",
		ClassID:   "5f0c3a54-9a7e-4f8e-9c31-222222222222",
		TermID:    "trm1",
		Entries: []models.BatchScoreEntry{
			{StudentID: "5f0c3a54-9a7e-4f8e-9c31-000000000002", CA1: 7, CA2: 6, Exam: 57},
			{StudentID: "5f0c3a54-9a7e-4f8e-9c31-000000000003", CA1: 9, CA2: 8, Exam: 99},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Recorded)
	assert.Equal(t, 2, metrics.recorded)
}

func TestSubmitRecomputesSummaries(t *testing.T) {
	repo := &mockResultRepo{}
	summaries := &mockRecomputer{}
	svc := newResultService(repo, openTerm(), summaries)

	req := validRecord("5f0c3a54-9a7e-4f8e-9c31-000000000001", 9, 8, 68)
	_, err := svc.Record(context.Background(), "sch1", "t1", req)
	require.NoError(t, err)

	affected, err := svc.Submit(context.Background(), "sch1", "t1", models.SubmitResultsRequest{
		SubjectID: req.SubjectID, ClassID: req.ClassID, TermID: req.TermID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, 1, summaries.calls)

	// Submitting an already submitted cohort touches nothing.
	affected, err = svc.Submit(context.Background(), "sch1", "t1", models.SubmitResultsRequest{
		SubjectID: req.SubjectID, ClassID: req.ClassID, TermID: req.TermID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.Equal(t, 1, summaries.calls)
}
