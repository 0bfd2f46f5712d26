package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/schoolware/result-portal-api/internal/models"
	"github.com/schoolware/result-portal-api/internal/repository"
	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

type studentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ListByParent(ctx context.Context, parentUserID string) ([]models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// StudentService resolves students and enforces who may view whose
// results: students see their own, parents see their children's.
type StudentService struct {
	students studentRepo
	logger   *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentRepo, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, logger: logger}
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, err
	}
	return student, nil
}

// ListByClass returns a class's active students.
func (s *StudentService) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	return s.students.ListByClass(ctx, classID)
}

// Children returns the students linked to a parent account.
func (s *StudentService) Children(ctx context.Context, parentUserID string) ([]models.Student, error) {
	return s.students.ListByParent(ctx, parentUserID)
}

// AuthorizeView checks that the requesting user may read the given
// student's results. Staff roles pass unconditionally.
func (s *StudentService) AuthorizeView(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	switch claims.Role {
	case models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher:
		return nil
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if repository.IsNotFound(err) {
				return appErrors.Clone(appErrors.ErrForbidden, "no student record linked to account")
			}
			return err
		}
		if student.ID != studentID {
			return appErrors.Clone(appErrors.ErrForbidden, "students may only view their own results")
		}
		return nil
	case models.RoleParent:
		children, err := s.students.ListByParent(ctx, claims.UserID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.ID == studentID {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrForbidden, "parents may only view their children's results")
	default:
		return appErrors.ErrForbidden
	}
}
