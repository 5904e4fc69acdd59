//go:generate mockery --name TeacherService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"strings"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeacherService interface {
	CreateTeacher(ctx context.Context, req *model.CreateTeacherRequest) (*model.Teacher, error)
	GetTeacher(ctx context.Context, teacherID uuid.UUID) (*model.Teacher, error)
}

type teacherService struct {
	db          *gorm.DB
	teacherRepo repository.TeacherRepository
}

func NewTeacherService(db *gorm.DB, repo repository.TeacherRepository) TeacherService {
	return &teacherService{db: db, teacherRepo: repo}
}

func (s *teacherService) CreateTeacher(ctx context.Context, req *model.CreateTeacherRequest) (*model.Teacher, error) {
	logger := middleware.GetLogger(ctx)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}

	teacher := &model.Teacher{
		TeacherID: uuid.New(),
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		IsActive:  true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.teacherRepo.Create(ctx, tx, teacher)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Teacher email already registered", "email", teacher.Email)
			return nil, model.NewAppError("EMAIL_ALREADY_EXISTS", "このメールアドレスは既に登録されています。", "email", model.ErrConflict)
		}
		logger.Error("Failed to create teacher", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "教師の登録に失敗しました。", "", err)
	}
	logger.Info("Teacher created", "teacher_id", teacher.TeacherID)
	return teacher, nil
}

func (s *teacherService) GetTeacher(ctx context.Context, teacherID uuid.UUID) (*model.Teacher, error) {
	teacher, err := s.teacherRepo.FindByID(ctx, s.db, teacherID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("TEACHER_NOT_FOUND", "教師が見つかりません。", "teacher_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "教師の取得に失敗しました。", "", err)
	}
	return teacher, nil
}
