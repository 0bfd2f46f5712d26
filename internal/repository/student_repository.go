package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

const studentColumns = `id, school_id, user_id, parent_user_id, class_id, admission_no,
        first_name, last_name, gender, date_of_birth, active, created_at, updated_at`

// StudentRepository handles student persistence.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns one student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByUserID resolves the student record behind a login account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf("SELECT %s FROM students WHERE user_id = $1", studentColumns)
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, fmt.Errorf("find student by user: %w", err)
	}
	return &student, nil
}

// ListByParent returns the active children linked to a parent account.
func (r *StudentRepository) ListByParent(ctx context.Context, parentUserID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE parent_user_id = $1 AND active = TRUE ORDER BY first_name, last_name`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, parentUserID); err != nil {
		return nil, fmt.Errorf("list students by parent: %w", err)
	}
	return students, nil
}

// ListByClass returns active students of a class.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE class_id = $1 AND active = TRUE ORDER BY first_name, last_name`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}
