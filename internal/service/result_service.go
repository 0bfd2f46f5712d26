package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/grading"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type resultRepo interface {
	FindByID(ctx context.Context, id string) (*models.SubjectResult, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, int, error)
	Upsert(ctx context.Context, result *models.SubjectResult) error
	FetchCohort(ctx context.Context, subjectID, classID, termID string) ([]models.SubjectResult, error)
	SaveDerived(ctx context.Context, results []models.SubjectResult) error
	MarkSubmitted(ctx context.Context, subjectID, classID, termID, submittedBy string, resultIDs []string) (int64, error)
}

type termReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type scaleProvider interface {
	ScaleForSchool(ctx context.Context, schoolID string) (*grading.Scale, error)
}

type classRecomputer interface {
	RecomputeClass(ctx context.Context, schoolID, classID, termID string) error
}

type engineMetrics interface {
	ObserveCohortRecompute(scope string, seconds float64)
	IncResultsRecorded(n int)
	IncSummariesBuilt(n int)
	IncLockTimeout()
}

// ResultService records subject scores and keeps every derived field of
// the affected cohort consistent: total, grade, grade point, position
// and class average.
type ResultService struct {
	results   resultRepo
	terms     termReader
	scales    scaleProvider
	summaries classRecomputer
	locker    *CohortLocker
	metrics   engineMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService constructs ResultService.
func NewResultService(results resultRepo, terms termReader, scales scaleProvider, summaries classRecomputer, locker *CohortLocker, metrics engineMetrics, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewCohortLocker(0)
	}
	return &ResultService{
		results:   results,
		terms:     terms,
		scales:    scales,
		summaries: summaries,
		locker:    locker,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Record stores one student's scores and recomputes the cohort's derived
// fields. The returned row carries the fresh position and class average.
func (s *ResultService) Record(ctx context.Context, schoolID, teacherID string, req models.RecordResultRequest) (*models.SubjectResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.ensureTermOpen(ctx, req.TermID); err != nil {
		return nil, err
	}
	scale, err := s.scales.ScaleForSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	result := &models.SubjectResult{
		SchoolID:  schoolID,
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		ClassID:   req.ClassID,
		TermID:    req.TermID,
		CA1:       req.CA1,
		CA2:       req.CA2,
		Exam:      req.Exam,
		TeacherID: teacherID,
		Comment:   req.Comment,
	}
	if err := s.applyScores(result, scale); err != nil {
		return nil, err
	}

	release, err := s.acquireCohort(ctx, cohortKey(req.SubjectID, req.ClassID, req.TermID))
	if err != nil {
		return nil, err
	}
	submitted, err := func() (bool, error) {
		defer release()
		if err := s.results.Upsert(ctx, result); err != nil {
			return false, err
		}
		cohort, err := s.recomputeCohort(ctx, req.SubjectID, req.ClassID, req.TermID)
		if err != nil {
			return false, err
		}
		for i := range cohort {
			if cohort[i].ID == result.ID {
				*result = cohort[i]
				break
			}
		}
		return result.IsSubmitted, nil
	}()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncResultsRecorded(1)
	}

	// A submitted row feeds the term summaries, so those must follow.
	// The cohort lock is released first; summary recomputation takes
	// its own class-term lock.
	if submitted {
		if err := s.summaries.RecomputeClass(ctx, schoolID, req.ClassID, req.TermID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// BatchRecord stores scores for many students of one cohort, recomputing
// derived fields once. Invalid rows are reported without failing the rest.
func (s *ResultService) BatchRecord(ctx context.Context, schoolID, teacherID string, req models.BatchRecordRequest) (*models.BatchRecordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.ensureTermOpen(ctx, req.TermID); err != nil {
		return nil, err
	}
	scale, err := s.scales.ScaleForSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	resp := &models.BatchRecordResponse{}
	pending := make([]*models.SubjectResult, 0, len(req.Entries))
	for _, entry := range req.Entries {
		result := &models.SubjectResult{
			SchoolID:  schoolID,
			StudentID: entry.StudentID,
			SubjectID: req.SubjectID,
			ClassID:   req.ClassID,
			TermID:    req.TermID,
			CA1:       entry.CA1,
			CA2:       entry.CA2,
			Exam:      entry.Exam,
			TeacherID: teacherID,
			Comment:   entry.Comment,
		}
		if err := s.applyScores(result, scale); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, models.BatchRecordError{StudentID: entry.StudentID, Message: appErrors.FromError(err).Message})
			continue
		}
		pending = append(pending, result)
	}
	if len(pending) == 0 {
		return resp, nil
	}

	release, err := s.acquireCohort(ctx, cohortKey(req.SubjectID, req.ClassID, req.TermID))
	if err != nil {
		return nil, err
	}
	anySubmitted, err := func() (bool, error) {
		defer release()
		submitted := false
		for _, result := range pending {
			if err := s.results.Upsert(ctx, result); err != nil {
				resp.Failed++
				resp.Errors = append(resp.Errors, models.BatchRecordError{StudentID: result.StudentID, Message: appErrors.FromError(err).Message})
				continue
			}
			submitted = submitted || result.IsSubmitted
			resp.Recorded++
		}
		if resp.Recorded == 0 {
			return false, nil
		}
		cohort, err := s.recomputeCohort(ctx, req.SubjectID, req.ClassID, req.TermID)
		if err != nil {
			return false, err
		}
		byID := make(map[string]models.SubjectResult, len(cohort))
		for _, row := range cohort {
			byID[row.ID] = row
		}
		for _, result := range pending {
			if row, ok := byID[result.ID]; ok {
				resp.Results = append(resp.Results, row)
			}
		}
		return submitted, nil
	}()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncResultsRecorded(resp.Recorded)
	}

	if anySubmitted {
		if err := s.summaries.RecomputeClass(ctx, schoolID, req.ClassID, req.TermID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Submit finalises result rows so they count towards term summaries.
// With no explicit IDs the whole cohort is submitted.
func (s *ResultService) Submit(ctx context.Context, schoolID, submitterID string, req models.SubmitResultsRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.ensureTermOpen(ctx, req.TermID); err != nil {
		return 0, err
	}

	release, err := s.acquireCohort(ctx, cohortKey(req.SubjectID, req.ClassID, req.TermID))
	if err != nil {
		return 0, err
	}
	affected, err := func() (int64, error) {
		defer release()
		return s.results.MarkSubmitted(ctx, req.SubjectID, req.ClassID, req.TermID, submitterID, req.ResultIDs)
	}()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}

	if err := s.summaries.RecomputeClass(ctx, schoolID, req.ClassID, req.TermID); err != nil {
		return affected, err
	}
	return affected, nil
}

// List returns result rows matching the filter with paging metadata.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	results, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return results, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one result row.
func (s *ResultService) Get(ctx context.Context, id string) (*models.SubjectResult, error) {
	result, err := s.results.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, err
	}
	return result, nil
}

func (s *ResultService) acquireCohort(ctx context.Context, key string) (func(), error) {
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		if s.metrics != nil && appErrors.Is(err, appErrors.ErrConcurrency) {
			s.metrics.IncLockTimeout()
		}
		return nil, err
	}
	return release, nil
}

func (s *ResultService) ensureTermOpen(ctx context.Context, termID string) error {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if repository.IsNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return err
	}
	if term.IsLocked {
		return appErrors.ErrTermLocked
	}
	return nil
}

// applyScores validates component bounds and fills total, grade and
// grade point from the scale.
func (s *ResultService) applyScores(result *models.SubjectResult, scale *grading.Scale) error {
	if result.CA1 < 0 || result.CA1 > models.CA1Max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("ca1 %v outside 0-%v", result.CA1, models.CA1Max))
	}
	if result.CA2 < 0 || result.CA2 > models.CA2Max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("ca2 %v outside 0-%v", result.CA2, models.CA2Max))
	}
	if result.Exam < 0 || result.Exam > models.ExamMax {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("exam %v outside 0-%v", result.Exam, models.ExamMax))
	}
	result.Total = grading.Round2(result.CA1 + result.CA2 + result.Exam)
	band, err := scale.Resolve(result.Total)
	if err != nil {
		return err
	}
	result.Grade = band.Grade
	result.GradePoint = band.Point
	return nil
}

// recomputeCohort re-ranks the whole cohort and persists the derived
// fields atomically. Class average spans every row of the cohort, not
// just submitted ones, so it matches what teachers see during entry.
func (s *ResultService) recomputeCohort(ctx context.Context, subjectID, classID, termID string) ([]models.SubjectResult, error) {
	started := time.Now()
	cohort, err := s.results.FetchCohort(ctx, subjectID, classID, termID)
	if err != nil {
		return nil, err
	}
	if len(cohort) == 0 {
		return cohort, nil
	}

	totals := make([]float64, len(cohort))
	for i := range cohort {
		totals[i] = cohort[i].Total
	}
	positions := grading.Positions(totals)
	classAverage := grading.Mean(totals)
	for i := range cohort {
		cohort[i].Position = positions[i]
		cohort[i].ClassAverage = classAverage
	}

	if err := s.results.SaveDerived(ctx, cohort); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveCohortRecompute("subject", time.Since(started).Seconds())
	}
	return cohort, nil
}

func cohortKey(subjectID, classID, termID string) string {
	return "cohort:" + subjectID + ":" + classID + ":" + termID
}
