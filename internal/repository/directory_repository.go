package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

// DirectoryRepository serves the name lookups report rendering needs:
// schools, classes, subjects and sessions.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// SchoolByID returns one school or sql.ErrNoRows.
func (r *DirectoryRepository) SchoolByID(ctx context.Context, id string) (*models.School, error) {
	var school models.School
	const query = `SELECT id, name, motto, address, phone, email, active, created_at, updated_at
        FROM schools WHERE id = $1`
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &school, nil
}

// ClassByID returns one class or sql.ErrNoRows.
func (r *DirectoryRepository) ClassByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	const query = `SELECT id, school_id, name, level, arm, class_teacher_id, created_at, updated_at
        FROM classes WHERE id = $1`
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// SessionByID returns one academic session or sql.ErrNoRows.
func (r *DirectoryRepository) SessionByID(ctx context.Context, id string) (*models.AcademicSession, error) {
	var session models.AcademicSession
	const query = `SELECT id, school_id, name, start_date, end_date, is_current, created_at, updated_at
        FROM academic_sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// SubjectsBySchool returns all subjects of a school.
func (r *DirectoryRepository) SubjectsBySchool(ctx context.Context, schoolID string) ([]models.Subject, error) {
	const query = `SELECT id, school_id, name, code, created_at, updated_at
        FROM subjects WHERE school_id = $1 ORDER BY name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, schoolID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
