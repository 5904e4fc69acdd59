//go:generate mockery --name StudentService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentService interface {
	CreateStudent(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error)
	GetStudent(ctx context.Context, studentID uuid.UUID) (*model.Student, error)
	ListStudents(ctx context.Context, activeOnly bool) ([]*model.Student, error)
	// DeactivateStudent は論理的な無効化。記録や受講履歴は残る
	DeactivateStudent(ctx context.Context, studentID uuid.UUID) error
}

type studentService struct {
	db          *gorm.DB
	studentRepo repository.StudentRepository
}

func NewStudentService(db *gorm.DB, repo repository.StudentRepository) StudentService {
	return &studentService{db: db, studentRepo: repo}
}

func (s *studentService) CreateStudent(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	logger := middleware.GetLogger(ctx)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}

	student := &model.Student{
		StudentID:     uuid.New(),
		Name:          req.Name,
		GuardianPhone: req.GuardianPhone,
		IsActive:      true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.studentRepo.Create(ctx, tx, student)
	})
	if err != nil {
		logger.Error("Failed to create student", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の登録に失敗しました。", "", err)
	}
	logger.Info("Student created", "student_id", student.StudentID)
	return student, nil
}

func (s *studentService) GetStudent(ctx context.Context, studentID uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, s.db, studentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("STUDENT_NOT_FOUND", "生徒が見つかりません。", "student_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の取得に失敗しました。", "", err)
	}
	return student, nil
}

func (s *studentService) ListStudents(ctx context.Context, activeOnly bool) ([]*model.Student, error) {
	students, err := s.studentRepo.List(ctx, s.db, activeOnly)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "生徒一覧の取得に失敗しました。", "", err)
	}
	return students, nil
}

func (s *studentService) DeactivateStudent(ctx context.Context, studentID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("student_id", studentID)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.studentRepo.Update(ctx, tx, studentID, map[string]interface{}{"is_active": false})
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("STUDENT_NOT_FOUND", "生徒が見つかりません。", "student_id", model.ErrNotFound)
		}
		logger.Error("Failed to deactivate student", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の無効化に失敗しました。", "", err)
	}
	logger.Info("Student deactivated")
	return nil
}
