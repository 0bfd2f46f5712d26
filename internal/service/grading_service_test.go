package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/models"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type mockGradingRepo struct {
	system  *models.GradingSystem
	created *models.GradingSystem
}

func (m *mockGradingRepo) DefaultSystemForSchool(ctx context.Context, schoolID string) (*models.GradingSystem, error) {
	if m.system == nil {
		return nil, sql.ErrNoRows
	}
	return m.system, nil
}

func (m *mockGradingRepo) FindSystem(ctx context.Context, id string) (*models.GradingSystem, error) {
	if m.system == nil || m.system.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.system, nil
}

func (m *mockGradingRepo) ListSystems(ctx context.Context, schoolID string) ([]models.GradingSystem, error) {
	if m.system == nil {
		return nil, nil
	}
	return []models.GradingSystem{*m.system}, nil
}

func (m *mockGradingRepo) CreateSystem(ctx context.Context, system *models.GradingSystem) error {
	m.created = system
	return nil
}

func (m *mockGradingRepo) SetDefault(ctx context.Context, schoolID, systemID string) error {
	if m.system == nil || m.system.ID != systemID {
		return sql.ErrNoRows
	}
	m.system.IsDefault = true
	return nil
}

func TestScaleForSchoolFallsBackToDefault(t *testing.T) {
	svc := NewGradingService(&mockGradingRepo{}, nil, nil, nil)

	scale, err := svc.ScaleForSchool(context.Background(), "sch1")
	require.NoError(t, err)

	band, err := scale.Resolve(85)
	require.NoError(t, err)
	assert.Equal(t, "A1", band.Grade)
	assert.Equal(t, 4.0, band.Point)
}

func TestScaleForSchoolUsesConfiguredSystem(t *testing.T) {
	repo := &mockGradingRepo{system: &models.GradingSystem{
		ID: "gs1", SchoolID: "sch1", IsDefault: true,
		Scales: []models.GradeScale{
			{Grade: "PASS", MinScore: 40, MaxScore: 100, GradePoint: 1},
			{Grade: "FAIL", MinScore: 0, MaxScore: 39, GradePoint: 0},
		},
	}}
	svc := NewGradingService(repo, nil, nil, nil)

	scale, err := svc.ScaleForSchool(context.Background(), "sch1")
	require.NoError(t, err)

	band, err := scale.Resolve(85)
	require.NoError(t, err)
	assert.Equal(t, "PASS", band.Grade)
}

func TestScaleForSchoolRejectsBrokenConfiguration(t *testing.T) {
	repo := &mockGradingRepo{system: &models.GradingSystem{
		ID: "gs1", SchoolID: "sch1", IsDefault: true,
		Scales: []models.GradeScale{
			{Grade: "PASS", MinScore: 50, MaxScore: 100, GradePoint: 1},
			{Grade: "FAIL", MinScore: 0, MaxScore: 30, GradePoint: 0},
		},
	}}
	svc := NewGradingService(repo, nil, nil, nil)

	_, err := svc.ScaleForSchool(context.Background(), "sch1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestCreateSystemValidatesBands(t *testing.T) {
	repo := &mockGradingRepo{}
	svc := NewGradingService(repo, nil, nil, nil)

	_, err := svc.CreateSystem(context.Background(), "sch1", models.CreateGradingSystemRequest{
		Name: "Broken",
		Scales: []models.GradeScaleBandRequest{
			{Grade: "A", MinScore: 0, MaxScore: 60},
			{Grade: "B", MinScore: 55, MaxScore: 100},
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestCreateSystemPersistsScales(t *testing.T) {
	repo := &mockGradingRepo{}
	svc := NewGradingService(repo, nil, nil, nil)

	system, err := svc.CreateSystem(context.Background(), "sch1", models.CreateGradingSystemRequest{
		Name:      "Simple",
		IsDefault: true,
		Scales: []models.GradeScaleBandRequest{
			{Grade: "PASS", MinScore: 40, MaxScore: 100, GradePoint: 1},
			{Grade: "FAIL", MinScore: 0, MaxScore: 39, GradePoint: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sch1", system.SchoolID)
	assert.True(t, system.IsDefault)
	require.NotNil(t, repo.created)
	assert.Len(t, repo.created.Scales, 2)
}
