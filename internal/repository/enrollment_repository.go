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

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *model.CurriculumEnrollment) error
	FindActiveByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.CurriculumEnrollment, error)
	// LockActiveByStudent は受講中の行を FOR UPDATE で取得する。トランザクション内で呼ぶこと。
	LockActiveByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*model.CurriculumEnrollment, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]*model.CurriculumEnrollment, error) // Student を Preload
	// CompareAndUpdate は version が expectedVersion のときだけ更新し、version を1つ進める。
	// 0件更新なら ErrConflict。
	CompareAndUpdate(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, expectedVersion int, updates map[string]interface{}) error
}

type gormEnrollmentRepository struct{}

func NewGormEnrollmentRepository() EnrollmentRepository {
	return &gormEnrollmentRepository{}
}

func (r *gormEnrollmentRepository) Create(ctx context.Context, tx *gorm.DB, enrollment *model.CurriculumEnrollment) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(enrollment)
	if result.Error != nil {
		// 受講中が既にある場合は部分ユニークインデックス違反 -> ErrConflict
		logger.Warn("Error creating enrollment in DB",
			"error", result.Error,
			"student_id", enrollment.StudentID.String(),
			"curriculum_id", enrollment.CurriculumID.String(),
		)
		return fmt.Errorf("gormEnrollmentRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormEnrollmentRepository) FindActiveByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.CurriculumEnrollment, error) {
	return r.findActive(ctx, db.WithContext(ctx), studentID, "FindActiveByStudent")
}

func (r *gormEnrollmentRepository) LockActiveByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*model.CurriculumEnrollment, error) {
	return r.findActive(ctx, forUpdate(tx.WithContext(ctx)), studentID, "LockActiveByStudent")
}

func (r *gormEnrollmentRepository) findActive(ctx context.Context, db *gorm.DB, studentID uuid.UUID, op string) (*model.CurriculumEnrollment, error) {
	var enrollment model.CurriculumEnrollment
	result := db.
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentInProgress).
		First(&enrollment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding active enrollment in DB", "error", result.Error, "student_id", studentID.String())
		return nil, fmt.Errorf("gormEnrollmentRepository.%s: %w", op, translateError(result.Error))
	}
	return &enrollment, nil
}

func (r *gormEnrollmentRepository) ListActive(ctx context.Context, db *gorm.DB) ([]*model.CurriculumEnrollment, error) {
	var enrollments []*model.CurriculumEnrollment
	result := db.WithContext(ctx).
		Preload("Student").
		Where("status = ?", model.EnrollmentInProgress).
		Order("started_at ASC").
		Find(&enrollments)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error listing active enrollments in DB", "error", result.Error)
		return nil, fmt.Errorf("gormEnrollmentRepository.ListActive: %w", result.Error)
	}
	return enrollments, nil
}

func (r *gormEnrollmentRepository) CompareAndUpdate(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, expectedVersion int, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	result := tx.WithContext(ctx).
		Model(&model.CurriculumEnrollment{}).
		Where("enrollment_id = ? AND version = ?", enrollmentID, expectedVersion).
		Updates(values)
	if result.Error != nil {
		logger.Error("Error updating enrollment in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return fmt.Errorf("gormEnrollmentRepository.CompareAndUpdate: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		logger.Warn("Enrollment version mismatch, concurrent update detected",
			"enrollment_id", enrollmentID.String(),
			"expected_version", expectedVersion,
		)
		return fmt.Errorf("gormEnrollmentRepository.CompareAndUpdate: %w", model.ErrConflict)
	}
	return nil
}
