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

// GradingRepository handles grading system and grade scale persistence.
type GradingRepository struct {
	db *sqlx.DB
}

// NewGradingRepository creates a new grading repository.
func NewGradingRepository(db *sqlx.DB) *GradingRepository {
	return &GradingRepository{db: db}
}

// DefaultSystemForSchool returns the school's default grading system with
// its scales loaded, or sql.ErrNoRows when none is configured.
func (r *GradingRepository) DefaultSystemForSchool(ctx context.Context, schoolID string) (*models.GradingSystem, error) {
	var system models.GradingSystem
	const query = `SELECT id, school_id, name, is_default, created_at, updated_at
        FROM grading_systems WHERE school_id = $1 AND is_default = TRUE`
	if err := r.db.GetContext(ctx, &system, query, schoolID); err != nil {
		return nil, fmt.Errorf("find default grading system: %w", err)
	}
	scales, err := r.scalesForSystem(ctx, system.ID)
	if err != nil {
		return nil, err
	}
	system.Scales = scales
	return &system, nil
}

// FindSystem returns one grading system with scales.
func (r *GradingRepository) FindSystem(ctx context.Context, id string) (*models.GradingSystem, error) {
	var system models.GradingSystem
	const query = `SELECT id, school_id, name, is_default, created_at, updated_at
        FROM grading_systems WHERE id = $1`
	if err := r.db.GetContext(ctx, &system, query, id); err != nil {
		return nil, fmt.Errorf("find grading system: %w", err)
	}
	scales, err := r.scalesForSystem(ctx, system.ID)
	if err != nil {
		return nil, err
	}
	system.Scales = scales
	return &system, nil
}

// ListSystems returns every grading system of a school, scales included.
func (r *GradingRepository) ListSystems(ctx context.Context, schoolID string) ([]models.GradingSystem, error) {
	const query = `SELECT id, school_id, name, is_default, created_at, updated_at
        FROM grading_systems WHERE school_id = $1 ORDER BY created_at`
	var systems []models.GradingSystem
	if err := r.db.SelectContext(ctx, &systems, query, schoolID); err != nil {
		return nil, fmt.Errorf("list grading systems: %w", err)
	}
	for i := range systems {
		scales, err := r.scalesForSystem(ctx, systems[i].ID)
		if err != nil {
			return nil, err
		}
		systems[i].Scales = scales
	}
	return systems, nil
}

// CreateSystem inserts a grading system with its scales atomically. When
// the new system is the default, any previous default is demoted.
func (r *GradingRepository) CreateSystem(ctx context.Context, system *models.GradingSystem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if system.ID == "" {
		system.ID = uuid.NewString()
	}
	system.CreatedAt = now
	system.UpdatedAt = now

	if system.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE grading_systems SET is_default = FALSE, updated_at = $1 WHERE school_id = $2 AND is_default = TRUE`,
			now, system.SchoolID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("demote default grading system: %w", err)
		}
	}

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO grading_systems (id, school_id, name, is_default, created_at, updated_at)
         VALUES (:id, :school_id, :name, :is_default, :created_at, :updated_at)`, system); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert grading system: %w", err)
	}

	for i := range system.Scales {
		system.Scales[i].ID = uuid.NewString()
		system.Scales[i].GradingSystemID = system.ID
		system.Scales[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO grade_scales (id, grading_system_id, grade, min_score, max_score, grade_point, remark, created_at)
             VALUES (:id, :grading_system_id, :grade, :min_score, :max_score, :grade_point, :remark, :created_at)`,
			system.Scales[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grade scale: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grading system: %w", err)
	}
	return nil
}

// SetDefault promotes a grading system to the school default.
func (r *GradingRepository) SetDefault(ctx context.Context, schoolID, systemID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE grading_systems SET is_default = FALSE, updated_at = $1 WHERE school_id = $2 AND is_default = TRUE`,
		now, schoolID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("demote default grading system: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE grading_systems SET is_default = TRUE, updated_at = $1 WHERE id = $2 AND school_id = $3`,
		now, systemID, schoolID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("promote grading system: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("promote grading system: %w", err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("promote grading system: %w", sql.ErrNoRows)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit default grading system: %w", err)
	}
	return nil
}

func (r *GradingRepository) scalesForSystem(ctx context.Context, systemID string) ([]models.GradeScale, error) {
	const query = `SELECT id, grading_system_id, grade, min_score, max_score, grade_point, remark, created_at
        FROM grade_scales WHERE grading_system_id = $1 ORDER BY min_score`
	var scales []models.GradeScale
	if err := r.db.SelectContext(ctx, &scales, query, systemID); err != nil {
		return nil, fmt.Errorf("list grade scales: %w", err)
	}
	return scales, nil
}
