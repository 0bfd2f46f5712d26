package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type termRepo interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	SetLocked(ctx context.Context, termID string, locked bool, lockedBy string) error
}

// TermService exposes term listing and the lock/unlock switch that
// freezes result entry once a term closes.
type TermService struct {
	terms  termRepo
	logger *zap.Logger
}

// NewTermService constructs TermService.
func NewTermService(terms termRepo, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{terms: terms, logger: logger}
}

// List returns terms matching the filter.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	return s.terms.List(ctx, filter)
}

// Get returns one term.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, err
	}
	return term, nil
}

// Lock freezes a term. Locking an already locked term is a no-op.
func (s *TermService) Lock(ctx context.Context, termID, lockedBy string) (*models.Term, error) {
	return s.setLocked(ctx, termID, true, lockedBy)
}

// Unlock reopens a term for corrections.
func (s *TermService) Unlock(ctx context.Context, termID, unlockedBy string) (*models.Term, error) {
	return s.setLocked(ctx, termID, false, unlockedBy)
}

func (s *TermService) setLocked(ctx context.Context, termID string, locked bool, actor string) (*models.Term, error) {
	if err := s.terms.SetLocked(ctx, termID, locked, actor); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, err
	}
	s.logger.Info("term lock changed", zap.String("term_id", termID), zap.Bool("locked", locked), zap.String("actor", actor))
	return s.terms.FindByID(ctx, termID)
}
