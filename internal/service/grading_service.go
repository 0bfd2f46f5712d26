package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/grading"
	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type gradingRepo interface {
	DefaultSystemForSchool(ctx context.Context, schoolID string) (*models.GradingSystem, error)
	FindSystem(ctx context.Context, id string) (*models.GradingSystem, error)
	ListSystems(ctx context.Context, schoolID string) ([]models.GradingSystem, error)
	CreateSystem(ctx context.Context, system *models.GradingSystem) error
	SetDefault(ctx context.Context, schoolID, systemID string) error
}

type scaleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GradingService resolves the grade scale in force for a school and
// manages grading system configuration.
type GradingService struct {
	repo      gradingRepo
	cache     scaleCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradingService constructs GradingService.
func NewGradingService(repo gradingRepo, cache scaleCache, validate *validator.Validate, logger *zap.Logger) *GradingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ScaleForSchool returns the school's default grade scale, falling back
// to the standard WAEC scale when none is configured. A configured but
// invalid scale is a configuration error, never a silent fallback.
func (s *GradingService) ScaleForSchool(ctx context.Context, schoolID string) (*grading.Scale, error) {
	cacheKey := "grading:scale:" + schoolID
	if s.cache != nil {
		var bands []grading.Band
		if err := s.cache.Get(ctx, cacheKey, &bands); err == nil {
			if scale, err := grading.NewScale(bands); err == nil {
				return scale, nil
			}
		}
	}

	system, err := s.repo.DefaultSystemForSchool(ctx, schoolID)
	if err != nil {
		if repository.IsNotFound(err) {
			return grading.DefaultScale(), nil
		}
		return nil, err
	}

	bands := make([]grading.Band, len(system.Scales))
	for i, scale := range system.Scales {
		bands[i] = grading.Band{
			Grade:  scale.Grade,
			Min:    scale.MinScore,
			Max:    scale.MaxScore,
			Point:  scale.GradePoint,
			Remark: scale.Remark,
		}
	}
	scale, err := grading.NewScale(bands)
	if err != nil {
		s.logger.Error("configured grading system invalid", zap.String("school_id", schoolID), zap.String("system_id", system.ID), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, bands, 10*time.Minute); err != nil {
			s.logger.Warn("cache grade scale", zap.Error(err))
		}
	}
	return scale, nil
}

// CreateSystem validates and persists a new grading system.
func (s *GradingService) CreateSystem(ctx context.Context, schoolID string, req models.CreateGradingSystemRequest) (*models.GradingSystem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	bands := make([]grading.Band, len(req.Scales))
	for i, band := range req.Scales {
		bands[i] = grading.Band{Grade: band.Grade, Min: band.MinScore, Max: band.MaxScore, Point: band.GradePoint, Remark: band.Remark}
	}
	if _, err := grading.NewScale(bands); err != nil {
		// Reject bad band layout as a client error at creation time.
		appErr := appErrors.FromError(err)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErr.Message)
	}

	system := &models.GradingSystem{
		SchoolID:  schoolID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}
	for _, band := range req.Scales {
		system.Scales = append(system.Scales, models.GradeScale{
			Grade:      band.Grade,
			MinScore:   band.MinScore,
			MaxScore:   band.MaxScore,
			GradePoint: band.GradePoint,
			Remark:     band.Remark,
		})
	}
	if err := s.repo.CreateSystem(ctx, system); err != nil {
		return nil, err
	}
	s.invalidate(ctx, schoolID)
	return system, nil
}

// ListSystems returns all grading systems of the school.
func (s *GradingService) ListSystems(ctx context.Context, schoolID string) ([]models.GradingSystem, error) {
	return s.repo.ListSystems(ctx, schoolID)
}

// SetDefault promotes a grading system to the school default.
func (s *GradingService) SetDefault(ctx context.Context, schoolID, systemID string) error {
	if err := s.repo.SetDefault(ctx, schoolID, systemID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "grading system not found")
		}
		return err
	}
	s.invalidate(ctx, schoolID)
	return nil
}

func (s *GradingService) invalidate(ctx context.Context, schoolID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "grading:scale:"+schoolID); err != nil {
		s.logger.Warn("invalidate grade scale cache", zap.Error(err))
	}
}
