package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

const resultColumns = `id, school_id, student_id, subject_id, class_id, term_id,
        ca1, ca2, exam, total, grade, grade_point, position, class_average,
        teacher_id, comment, is_submitted, submitted_at, submitted_by, created_at, updated_at`

// ResultRepository handles subject result persistence.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// FindByID returns one result row or sql.ErrNoRows.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.SubjectResult, error) {
	var result models.SubjectResult
	query := fmt.Sprintf("SELECT %s FROM subject_results WHERE id = $1", resultColumns)
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	return &result, nil
}

// FindByKey returns the row for the unique (student, subject, term) slot.
func (r *ResultRepository) FindByKey(ctx context.Context, key models.ResultKey) (*models.SubjectResult, error) {
	var result models.SubjectResult
	query := fmt.Sprintf(`SELECT %s FROM subject_results
        WHERE student_id = $1 AND subject_id = $2 AND term_id = $3`, resultColumns)
	if err := r.db.GetContext(ctx, &result, query, key.StudentID, key.SubjectID, key.TermID); err != nil {
		return nil, fmt.Errorf("find result by key: %w", err)
	}
	return &result, nil
}

// List returns results matching the filter plus a total count for paging.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.SubjectResult, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	add := func(clause string, value interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", clause, len(args)+1)
		args = append(args, value)
	}
	if filter.SchoolID != "" {
		add("school_id", filter.SchoolID)
	}
	if filter.StudentID != "" {
		add("student_id", filter.StudentID)
	}
	if filter.SubjectID != "" {
		add("subject_id", filter.SubjectID)
	}
	if filter.ClassID != "" {
		add("class_id", filter.ClassID)
	}
	if filter.TermID != "" {
		add("term_id", filter.TermID)
	}
	if filter.Submitted != nil {
		add("is_submitted", *filter.Submitted)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subject_results"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM subject_results%s ORDER BY updated_at DESC", resultColumns, where)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}
	return results, total, nil
}

// Upsert inserts or updates the raw scores for a result slot. Derived
// columns and the submitted flag are left to SaveDerived and
// MarkSubmitted so a re-entry never silently unsubmits a row.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.SubjectResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	const query = `INSERT INTO subject_results (id, school_id, student_id, subject_id, class_id, term_id,
            ca1, ca2, exam, total, grade, grade_point, teacher_id, comment, is_submitted, created_at, updated_at)
        VALUES (:id, :school_id, :student_id, :subject_id, :class_id, :term_id,
            :ca1, :ca2, :exam, :total, :grade, :grade_point, :teacher_id, :comment, :is_submitted, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, term_id)
        DO UPDATE SET ca1 = EXCLUDED.ca1, ca2 = EXCLUDED.ca2, exam = EXCLUDED.exam,
            total = EXCLUDED.total, grade = EXCLUDED.grade, grade_point = EXCLUDED.grade_point,
            comment = EXCLUDED.comment, teacher_id = EXCLUDED.teacher_id, updated_at = EXCLUDED.updated_at
        RETURNING id, is_submitted, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, result)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&result.ID, &result.IsSubmitted, &result.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted result: %w", err)
		}
	}
	return nil
}

// FetchCohort returns every row for a (subject, class, term) cohort.
func (r *ResultRepository) FetchCohort(ctx context.Context, subjectID, classID, termID string) ([]models.SubjectResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_results
        WHERE subject_id = $1 AND class_id = $2 AND term_id = $3
        ORDER BY total DESC, student_id`, resultColumns)
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, subjectID, classID, termID); err != nil {
		return nil, fmt.Errorf("fetch cohort: %w", err)
	}
	return results, nil
}

// SaveDerived persists recomputed positions and class averages for a
// cohort in one transaction so readers never observe a half-ranked cohort.
func (r *ResultRepository) SaveDerived(ctx context.Context, results []models.SubjectResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `UPDATE subject_results
        SET position = :position, class_average = :class_average, updated_at = :updated_at
        WHERE id = :id`
	now := time.Now().UTC()
	for i := range results {
		results[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, results[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("save derived fields: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit derived fields: %w", err)
	}
	return nil
}

// MarkSubmitted flags rows as submitted. With no IDs the whole cohort is
// submitted at once.
func (r *ResultRepository) MarkSubmitted(ctx context.Context, subjectID, classID, termID, submittedBy string, resultIDs []string) (int64, error) {
	now := time.Now().UTC()
	if len(resultIDs) == 0 {
		const query = `UPDATE subject_results SET is_submitted = TRUE, submitted_at = $1, submitted_by = $2, updated_at = $1
            WHERE subject_id = $3 AND class_id = $4 AND term_id = $5 AND is_submitted = FALSE`
		res, err := r.db.ExecContext(ctx, query, now, submittedBy, subjectID, classID, termID)
		if err != nil {
			return 0, fmt.Errorf("submit cohort: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := make([]string, len(resultIDs))
	args := make([]interface{}, 0, len(resultIDs)+5)
	args = append(args, now, submittedBy, subjectID, classID, termID)
	for i, id := range resultIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}
	query := fmt.Sprintf(`UPDATE subject_results SET is_submitted = TRUE, submitted_at = $1, submitted_by = $2, updated_at = $1
        WHERE subject_id = $3 AND class_id = $4 AND term_id = $5 AND id IN (%s)`, strings.Join(placeholders, ","))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("submit results: %w", err)
	}
	return res.RowsAffected()
}

// ListSubmittedByClassTerm returns every submitted row for a class+term,
// the input to term summary recomputation.
func (r *ResultRepository) ListSubmittedByClassTerm(ctx context.Context, classID, termID string) ([]models.SubjectResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_results
        WHERE class_id = $1 AND term_id = $2 AND is_submitted = TRUE
        ORDER BY student_id, subject_id`, resultColumns)
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list submitted results: %w", err)
	}
	return results, nil
}

// ListByStudentTerm returns a student's submitted rows for one term.
func (r *ResultRepository) ListByStudentTerm(ctx context.Context, studentID, termID string) ([]models.SubjectResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_results
        WHERE student_id = $1 AND term_id = $2 AND is_submitted = TRUE
        ORDER BY subject_id`, resultColumns)
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	return results, nil
}

// IsNotFound reports whether the error is the driver's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
