package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

const reportJobColumns = `id, school_id, params, status, progress, file_path,
        created_by, created_at, finished_at, error_message`

// ReportRepository persists report card generation jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new queued job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	job.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO report_jobs (id, school_id, params, status, progress, created_by, created_at)
        VALUES (:id, :school_id, :params, :status, :progress, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID returns one job or sql.ErrNoRows.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	var job models.ReportJob
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1", reportJobColumns)
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("find report job: %w", err)
	}
	return &job, nil
}

// UpdateProgress moves a job through its lifecycle.
func (r *ReportRepository) UpdateProgress(ctx context.Context, id string, status models.ReportStatus, progress int) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE report_jobs SET status = $1, progress = $2 WHERE id = $3",
		status, progress, id); err != nil {
		return fmt.Errorf("update report job progress: %w", err)
	}
	return nil
}

// MarkFinished records the output file of a completed job.
func (r *ReportRepository) MarkFinished(ctx context.Context, id, filePath string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		"UPDATE report_jobs SET status = $1, progress = 100, file_path = $2, finished_at = $3 WHERE id = $4",
		models.ReportStatusFinished, filePath, now, id); err != nil {
		return fmt.Errorf("mark report job finished: %w", err)
	}
	return nil
}

// MarkFailed records a job failure with its reason.
func (r *ReportRepository) MarkFailed(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		"UPDATE report_jobs SET status = $1, finished_at = $2, error_message = $3 WHERE id = $4",
		models.ReportStatusFailed, now, reason, id); err != nil {
		return fmt.Errorf("mark report job failed: %w", err)
	}
	return nil
}
