package repository

import (
	"context"
	"errors"
	"fmt"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeacherRepository interface {
	Create(ctx context.Context, tx *gorm.DB, teacher *model.Teacher) error
	FindByID(ctx context.Context, db *gorm.DB, teacherID uuid.UUID) (*model.Teacher, error)
}

type gormTeacherRepository struct{}

func NewGormTeacherRepository() TeacherRepository {
	return &gormTeacherRepository{}
}

func (r *gormTeacherRepository) Create(ctx context.Context, tx *gorm.DB, teacher *model.Teacher) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(teacher)
	if result.Error != nil {
		// メール重複は ErrConflict になる
		logger.Warn("Error creating teacher in DB", "error", result.Error, "email", teacher.Email)
		return fmt.Errorf("gormTeacherRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormTeacherRepository) FindByID(ctx context.Context, db *gorm.DB, teacherID uuid.UUID) (*model.Teacher, error) {
	logger := middleware.GetLogger(ctx)
	var teacher model.Teacher
	result := db.WithContext(ctx).Where("teacher_id = ?", teacherID).First(&teacher)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding teacher by ID in DB", "error", result.Error, "teacher_id", teacherID.String())
		return nil, fmt.Errorf("gormTeacherRepository.FindByID: %w", result.Error)
	}
	return &teacher, nil
}
