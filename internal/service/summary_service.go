package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/grading"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type summaryRepo interface {
	UpsertBatch(ctx context.Context, summaries []models.TermSummary) error
	FindByStudentTerm(ctx context.Context, studentID, termID string) (*models.TermSummary, error)
	ListByClassTerm(ctx context.Context, classID, termID string) ([]models.TermSummary, error)
	UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error
}

type submittedResultsReader interface {
	ListSubmittedByClassTerm(ctx context.Context, classID, termID string) ([]models.SubjectResult, error)
	ListByStudentTerm(ctx context.Context, studentID, termID string) ([]models.SubjectResult, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SummaryService aggregates submitted subject results into per-student
// term summaries and ranks the class by average score.
type SummaryService struct {
	summaries summaryRepo
	results   submittedResultsReader
	terms     termReader
	locker    *CohortLocker
	cache     summaryCache
	cacheTTL  time.Duration
	metrics   engineMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSummaryService constructs SummaryService.
func NewSummaryService(summaries summaryRepo, results submittedResultsReader, terms termReader, locker *CohortLocker, cache summaryCache, cacheTTL time.Duration, metrics engineMetrics, validate *validator.Validate, logger *zap.Logger) *SummaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewCohortLocker(0)
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SummaryService{
		summaries: summaries,
		results:   results,
		terms:     terms,
		locker:    locker,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// RecomputeClass rebuilds every student summary of the class for the
// term from submitted subject rows. Recomputation is idempotent: the
// same submitted rows always yield the same summaries. A locked term's
// summaries are frozen alongside its result rows.
func (s *SummaryService) RecomputeClass(ctx context.Context, schoolID, classID, termID string) error {
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

	release, err := s.locker.Acquire(ctx, "summary:"+classID+":"+termID)
	if err != nil {
		if s.metrics != nil && appErrors.Is(err, appErrors.ErrConcurrency) {
			s.metrics.IncLockTimeout()
		}
		return err
	}
	defer release()

	started := time.Now()
	rows, err := s.results.ListSubmittedByClassTerm(ctx, classID, termID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	type accumulator struct {
		total  float64
		points []float64
		count  int
	}
	byStudent := make(map[string]*accumulator)
	for _, row := range rows {
		acc, ok := byStudent[row.StudentID]
		if !ok {
			acc = &accumulator{}
			byStudent[row.StudentID] = acc
		}
		acc.total += row.Total
		acc.points = append(acc.points, row.GradePoint)
		acc.count++
	}

	studentIDs := make([]string, 0, len(byStudent))
	for id := range byStudent {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	summaries := make([]models.TermSummary, len(studentIDs))
	averages := make([]float64, len(studentIDs))
	for i, studentID := range studentIDs {
		acc := byStudent[studentID]
		average := grading.Round2(acc.total / float64(acc.count))
		averages[i] = average
		summaries[i] = models.TermSummary{
			SchoolID:     schoolID,
			StudentID:    studentID,
			ClassID:      classID,
			TermID:       termID,
			TotalScore:   grading.Round2(acc.total),
			AverageScore: average,
			GPA:          grading.Mean(acc.points),
			SubjectCount: acc.count,
		}
	}

	positions := grading.Positions(averages)
	for i := range summaries {
		summaries[i].Position = positions[i]
		summaries[i].TotalStudents = len(summaries)
	}

	if err := s.summaries.UpsertBatch(ctx, summaries); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveCohortRecompute("class", time.Since(started).Seconds())
		s.metrics.IncSummariesBuilt(len(summaries))
	}
	s.invalidate(ctx, termID)
	return nil
}

// GetTermSummary returns a student's summary and the submitted subject
// rows behind it. A student with no submitted results for the term gets
// ErrInsufficientData.
func (s *SummaryService) GetTermSummary(ctx context.Context, studentID, termID string) (*models.StudentTermResult, error) {
	cacheKey := "summary:" + termID + ":" + studentID
	if s.cache != nil {
		var cached models.StudentTermResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.summaries.FindByStudentTerm(ctx, studentID, termID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.ErrInsufficientData
		}
		return nil, err
	}
	subjects, err := s.results.ListByStudentTerm(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}

	out := &models.StudentTermResult{Summary: *summary, Subjects: subjects}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, out, s.cacheTTL); err != nil {
			s.logger.Warn("cache term summary", zap.Error(err))
		}
	}
	return out, nil
}

// ListClass returns a class's summaries ordered by position.
func (s *SummaryService) ListClass(ctx context.Context, classID, termID string) ([]models.TermSummary, error) {
	summaries, err := s.summaries.ListByClassTerm(ctx, classID, termID)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, appErrors.ErrInsufficientData
	}
	return summaries, nil
}

// UpdateRemarks patches staff-entered summary fields such as attendance,
// ratings and comments.
func (s *SummaryService) UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error {
	if err := s.validator.Struct(update); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.summaries.UpdateRemarks(ctx, studentID, termID, update); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "term summary not found")
		}
		return err
	}
	s.invalidate(ctx, termID)
	return nil
}

func (s *SummaryService) invalidate(ctx context.Context, termID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "summary:"+termID+":*"); err != nil {
		s.logger.Warn("invalidate summary cache", zap.Error(err))
	}
}
