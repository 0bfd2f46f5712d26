package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

const summaryColumns = `id, school_id, student_id, class_id, term_id,
        total_score, average_score, gpa, position, total_students, subject_count,
        days_present, days_absent, psychomotor_rating, affective_rating,
        teacher_comment, head_comment, promotion_status, computed_at, created_at, updated_at`

// SummaryRepository handles term summary persistence.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new summary repository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertBatch writes a recomputed class summary set in one transaction.
// Only derived columns are overwritten; remarks and attendance entered
// by staff survive recomputation.
func (r *SummaryRepository) UpsertBatch(ctx context.Context, summaries []models.TermSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO term_summaries (id, school_id, student_id, class_id, term_id,
            total_score, average_score, gpa, position, total_students, subject_count, promotion_status, computed_at, created_at, updated_at)
        VALUES (:id, :school_id, :student_id, :class_id, :term_id,
            :total_score, :average_score, :gpa, :position, :total_students, :subject_count, :promotion_status, :computed_at, :created_at, :updated_at)
        ON CONFLICT (student_id, term_id)
        DO UPDATE SET total_score = EXCLUDED.total_score, average_score = EXCLUDED.average_score,
            gpa = EXCLUDED.gpa, position = EXCLUDED.position, total_students = EXCLUDED.total_students,
            subject_count = EXCLUDED.subject_count, class_id = EXCLUDED.class_id,
            computed_at = EXCLUDED.computed_at, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range summaries {
		if summaries[i].ID == "" {
			summaries[i].ID = uuid.NewString()
		}
		if summaries[i].CreatedAt.IsZero() {
			summaries[i].CreatedAt = now
		}
		if summaries[i].PromotionStatus == "" {
			summaries[i].PromotionStatus = models.PromotionPending
		}
		summaries[i].ComputedAt = now
		summaries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, summaries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert term summary: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit term summaries: %w", err)
	}
	return nil
}

// FindByStudentTerm returns a student's summary or sql.ErrNoRows.
func (r *SummaryRepository) FindByStudentTerm(ctx context.Context, studentID, termID string) (*models.TermSummary, error) {
	var summary models.TermSummary
	query := fmt.Sprintf(`SELECT %s FROM term_summaries WHERE student_id = $1 AND term_id = $2`, summaryColumns)
	if err := r.db.GetContext(ctx, &summary, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("find term summary: %w", err)
	}
	return &summary, nil
}

// ListByClassTerm returns all summaries for a class+term ordered by position.
func (r *SummaryRepository) ListByClassTerm(ctx context.Context, classID, termID string) ([]models.TermSummary, error) {
	query := fmt.Sprintf(`SELECT %s FROM term_summaries
        WHERE class_id = $1 AND term_id = $2 ORDER BY position, student_id`, summaryColumns)
	var summaries []models.TermSummary
	if err := r.db.SelectContext(ctx, &summaries, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list term summaries: %w", err)
	}
	return summaries, nil
}

// UpdateRemarks patches the staff-entered, non-derived summary fields.
func (r *SummaryRepository) UpdateRemarks(ctx context.Context, studentID, termID string, update models.SummaryRemarksUpdate) error {
	set := "updated_at = $1"
	args := []interface{}{time.Now().UTC()}
	add := func(column string, value interface{}) {
		set += fmt.Sprintf(", %s = $%d", column, len(args)+1)
		args = append(args, value)
	}
	if update.DaysPresent != nil {
		add("days_present", *update.DaysPresent)
	}
	if update.DaysAbsent != nil {
		add("days_absent", *update.DaysAbsent)
	}
	if update.PsychomotorRating != nil {
		add("psychomotor_rating", *update.PsychomotorRating)
	}
	if update.AffectiveRating != nil {
		add("affective_rating", *update.AffectiveRating)
	}
	if update.TeacherComment != nil {
		add("teacher_comment", *update.TeacherComment)
	}
	if update.HeadComment != nil {
		add("head_comment", *update.HeadComment)
	}
	if update.PromotionStatus != nil {
		add("promotion_status", *update.PromotionStatus)
	}

	query := fmt.Sprintf("UPDATE term_summaries SET %s WHERE student_id = $%d AND term_id = $%d", set, len(args)+1, len(args)+2)
	args = append(args, studentID, termID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update summary remarks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update summary remarks: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update summary remarks: %w", sql.ErrNoRows)
	}
	return nil
}
