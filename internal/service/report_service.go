package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
	"github.com/schoolware/result-portal-api/pkg/export"
	"github.com/schoolware/result-portal-api/pkg/jobs"
	"github.com/schoolware/result-portal-api/pkg/storage"
)

type reportJobRepo interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateProgress(ctx context.Context, id string, status models.ReportStatus, progress int) error
	MarkFinished(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type reportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type termResultReader interface {
	GetTermSummary(ctx context.Context, studentID, termID string) (*models.StudentTermResult, error)
}

type reportDirectory interface {
	SchoolByID(ctx context.Context, id string) (*models.School, error)
	ClassByID(ctx context.Context, id string) (*models.Class, error)
	SessionByID(ctx context.Context, id string) (*models.AcademicSession, error)
	SubjectsBySchool(ctx context.Context, schoolID string) ([]models.Subject, error)
}

type reportTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type reportMetrics interface {
	IncReportJob(status string)
}

// ReportService renders report card PDFs. Single cards render inline;
// whole-class batches run on a background queue and produce a zip of
// PDFs retrievable through a signed URL.
type ReportService struct {
	reports   reportJobRepo
	students  reportStudentReader
	summaries termResultReader
	directory reportDirectory
	terms     reportTermReader
	renderer  *export.ReportCardPDF
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	metrics   reportMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// ReportQueueConfig sizes the background report worker pool.
type ReportQueueConfig struct {
	Workers    int
	MaxRetries int
}

// NewReportService constructs ReportService and its worker queue.
func NewReportService(reports reportJobRepo, students reportStudentReader, summaries termResultReader, directory reportDirectory, terms reportTermReader, renderer *export.ReportCardPDF, store *storage.LocalStorage, signer *storage.SignedURLSigner, queueCfg ReportQueueConfig, metrics reportMetrics, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewReportCardPDF()
	}
	s := &ReportService{
		reports:   reports,
		students:  students,
		summaries: summaries,
		directory: directory,
		terms:     terms,
		renderer:  renderer,
		store:     store,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("report-cards", s.process, jobs.QueueConfig{
		Workers:    queueCfg.Workers,
		MaxRetries: queueCfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// StudentReportCard renders one student's term report as PDF bytes.
func (s *ReportService) StudentReportCard(ctx context.Context, studentID, termID string) ([]byte, error) {
	card, err := s.buildCard(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(*card)
}

// EnqueueClassReportCards queues a whole-class report card batch.
func (s *ReportService) EnqueueClassReportCards(ctx context.Context, schoolID, createdBy string, req models.ClassReportRequest) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	job := &models.ReportJob{
		SchoolID:  schoolID,
		Params:    models.ReportJobParams{TermID: req.TermID, ClassID: req.ClassID},
		Status:    models.ReportStatusQueued,
		CreatedBy: createdBy,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "class_report_cards", Payload: job.ID}); err != nil {
		reason := "report queue unavailable"
		if markErr := s.reports.MarkFailed(ctx, job.ID, reason); markErr != nil {
			s.logger.Error("mark report job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, reason)
	}
	return job, nil
}

// GetJob returns a job's status with a signed download URL once finished.
func (s *ReportService) GetJob(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, err
	}
	if job.Status == models.ReportStatusFinished && job.FilePath != nil && s.signer != nil {
		token, _, err := s.signer.Generate(*job.FilePath)
		if err != nil {
			s.logger.Warn("sign report download", zap.String("job_id", job.ID), zap.Error(err))
		} else {
			url := "/api/v1/reports/download/" + token
			job.DownloadURL = &url
		}
	}
	return job, nil
}

// OpenDownload validates a signed token and opens the underlying file.
func (s *ReportService) OpenDownload(token string) (*os.File, string, error) {
	relPath, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report file not found")
	}
	parts := strings.Split(relPath, "/")
	return file, parts[len(parts)-1], nil
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok || jobID == "" {
		return fmt.Errorf("report job payload missing id")
	}
	record, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.reports.UpdateProgress(ctx, jobID, models.ReportStatusProcessing, 0); err != nil {
		return err
	}

	archive, err := s.renderClass(ctx, jobID, record.Params.ClassID, record.Params.TermID)
	if err != nil {
		if markErr := s.reports.MarkFailed(ctx, jobID, appErrors.FromError(err).Message); markErr != nil {
			s.logger.Error("mark report job failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		if s.metrics != nil {
			s.metrics.IncReportJob(string(models.ReportStatusFailed))
		}
		return err
	}

	relPath := fmt.Sprintf("%s/%s/report-cards-%s.zip", record.Params.TermID, record.Params.ClassID, jobID)
	if _, err := s.store.Save(relPath, archive); err != nil {
		if markErr := s.reports.MarkFailed(ctx, jobID, "failed to store report archive"); markErr != nil {
			s.logger.Error("mark report job failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		return err
	}
	if err := s.reports.MarkFinished(ctx, jobID, relPath); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncReportJob(string(models.ReportStatusFinished))
	}
	s.logger.Info("class report cards generated", zap.String("job_id", jobID), zap.String("class_id", record.Params.ClassID))
	return nil
}

func (s *ReportService) renderClass(ctx context.Context, jobID, classID, termID string) ([]byte, error) {
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInsufficientData, "class has no active students")
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	rendered := 0
	for i, student := range students {
		card, err := s.buildCard(ctx, student.ID, termID)
		if err != nil {
			// Students without submitted results are skipped, not fatal.
			if appErrors.Is(err, appErrors.ErrInsufficientData) {
				continue
			}
			return nil, err
		}
		pdf, err := s.renderer.Render(*card)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s-%s.pdf", student.AdmissionNo, strings.ReplaceAll(student.FullName(), " ", "-"))
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("add report to archive: %w", err)
		}
		if _, err := w.Write(pdf); err != nil {
			return nil, fmt.Errorf("write report to archive: %w", err)
		}
		rendered++

		progress := (i + 1) * 100 / len(students)
		if err := s.reports.UpdateProgress(ctx, jobID, models.ReportStatusProcessing, progress); err != nil {
			s.logger.Warn("update report progress", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	if rendered == 0 {
		return nil, appErrors.Clone(appErrors.ErrInsufficientData, "no submitted results for the requested class and term")
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close report archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) buildCard(ctx context.Context, studentID, termID string) (*export.ReportCard, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	result, err := s.summaries.GetTermSummary(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	school, err := s.directory.SchoolByID(ctx, student.SchoolID)
	if err != nil {
		return nil, err
	}
	class, err := s.directory.ClassByID(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	session, err := s.directory.SessionByID(ctx, term.SessionID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.directory.SubjectsBySchool(ctx, student.SchoolID)
	if err != nil {
		return nil, err
	}
	subjectNames := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		subjectNames[subject.ID] = subject.Name
	}

	card := &export.ReportCard{
		SchoolName:    school.Name,
		SchoolMotto:   school.Motto,
		StudentName:   student.FullName(),
		AdmissionNo:   student.AdmissionNo,
		ClassName:     class.Name,
		TermName:      term.Name,
		SessionName:   session.Name,
		TotalScore:    result.Summary.TotalScore,
		AverageScore:  result.Summary.AverageScore,
		GPA:           result.Summary.GPA,
		ClassPosition: result.Summary.Position,
		TotalStudents: result.Summary.TotalStudents,
		DaysPresent:   result.Summary.DaysPresent,
		DaysAbsent:    result.Summary.DaysAbsent,
		Psychomotor:   result.Summary.PsychomotorRating,
		Affective:     result.Summary.AffectiveRating,
	}
	if result.Summary.TeacherComment != nil {
		card.TeacherComment = *result.Summary.TeacherComment
	}
	if result.Summary.HeadComment != nil {
		card.HeadComment = *result.Summary.HeadComment
	}
	if term.NextTermBegins != nil {
		card.NextTermBegins = term.NextTermBegins.Format("2 January 2006")
	}

	for _, row := range result.Subjects {
		name := subjectNames[row.SubjectID]
		if name == "" {
			name = row.SubjectID
		}
		line := export.SubjectLine{
			Subject:      name,
			CA1:          row.CA1,
			CA2:          row.CA2,
			Exam:         row.Exam,
			Total:        row.Total,
			Grade:        row.Grade,
			Position:     row.Position,
			ClassAverage: row.ClassAverage,
		}
		if row.Comment != nil {
			line.Comment = *row.Comment
		}
		card.Subjects = append(card.Subjects, line)
	}

	return card, nil
}
