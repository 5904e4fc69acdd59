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

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *model.Student) error
	FindByID(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.Student, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*model.Student, error)
	Update(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, updates map[string]interface{}) error
}

type gormStudentRepository struct{}

func NewGormStudentRepository() StudentRepository {
	return &gormStudentRepository{}
}

func (r *gormStudentRepository) Create(ctx context.Context, tx *gorm.DB, student *model.Student) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(student)
	if result.Error != nil {
		logger.Error("Error creating student in DB", "error", result.Error, "student_id", student.StudentID.String())
		return fmt.Errorf("gormStudentRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormStudentRepository) FindByID(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.Student, error) {
	logger := middleware.GetLogger(ctx)
	var student model.Student
	result := db.WithContext(ctx).Where("student_id = ?", studentID).First(&student)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding student by ID in DB", "error", result.Error, "student_id", studentID.String())
		return nil, fmt.Errorf("gormStudentRepository.FindByID: %w", result.Error)
	}
	return &student, nil
}

func (r *gormStudentRepository) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*model.Student, error) {
	logger := middleware.GetLogger(ctx)
	var students []*model.Student
	query := db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if result := query.Find(&students); result.Error != nil {
		logger.Error("Error listing students in DB", "error", result.Error)
		return nil, fmt.Errorf("gormStudentRepository.List: %w", result.Error)
	}
	return students, nil
}

func (r *gormStudentRepository) Update(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Student{}).Where("student_id = ?", studentID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating student in DB", "error", result.Error, "student_id", studentID.String())
		return fmt.Errorf("gormStudentRepository.Update: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
