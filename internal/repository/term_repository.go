package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/schoolware/result-portal-api/internal/models"
)

const termColumns = `t.id, t.session_id, t.name, t.sequence, t.start_date, t.end_date,
        t.is_current, t.is_locked, t.locked_at, t.locked_by, t.next_term_begins, t.created_at, t.updated_at`

// TermRepository handles academic term persistence.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository creates a new term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID returns one term or sql.ErrNoRows.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	var term models.Term
	query := fmt.Sprintf("SELECT %s FROM terms t WHERE t.id = $1", termColumns)
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, fmt.Errorf("find term: %w", err)
	}
	return &term, nil
}

// List returns terms matching the filter, most recent session first.
func (r *TermRepository) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	query := fmt.Sprintf(`SELECT %s FROM terms t
        JOIN academic_sessions s ON s.id = t.session_id WHERE 1=1`, termColumns)
	var args []interface{}
	if filter.SchoolID != "" {
		query += fmt.Sprintf(" AND s.school_id = $%d", len(args)+1)
		args = append(args, filter.SchoolID)
	}
	if filter.SessionID != "" {
		query += fmt.Sprintf(" AND t.session_id = $%d", len(args)+1)
		args = append(args, filter.SessionID)
	}
	if filter.IsCurrent != nil {
		query += fmt.Sprintf(" AND t.is_current = $%d", len(args)+1)
		args = append(args, *filter.IsCurrent)
	}
	if filter.IsLocked != nil {
		query += fmt.Sprintf(" AND t.is_locked = $%d", len(args)+1)
		args = append(args, *filter.IsLocked)
	}
	query += " ORDER BY s.start_date DESC, t.sequence"
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// SetLocked locks or unlocks a term, recording who locked it.
func (r *TermRepository) SetLocked(ctx context.Context, termID string, locked bool, lockedBy string) error {
	now := time.Now().UTC()
	var query string
	var args []interface{}
	if locked {
		query = `UPDATE terms SET is_locked = TRUE, locked_at = $1, locked_by = $2, updated_at = $1 WHERE id = $3`
		args = []interface{}{now, lockedBy, termID}
	} else {
		query = `UPDATE terms SET is_locked = FALSE, locked_at = NULL, locked_by = NULL, updated_at = $1 WHERE id = $2`
		args = []interface{}{now, termID}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set term lock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set term lock: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set term lock: %w", sql.ErrNoRows)
	}
	return nil
}
