// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressRepository は進捗ポインタ行の読み書き。書き込みはトラッカーだけが使う。
type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *model.CurriculumProgress) error
	FindActiveByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.CurriculumProgress, error) // Plan を Preload
	FindLastCompleted(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.CurriculumProgress, error)      // sequence が最大の完了行
	ListByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]*model.CurriculumProgress, error)
	// Complete は in_progress の行を completed (100%) にする。対象が in_progress でなければ ErrConflict。
	Complete(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, completedAt time.Time) error
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.CurriculumProgress) error {
	logger := middleware.GetLogger(ctx)
	// Plan は関連として保存しない
	result := tx.WithContext(ctx).Omit("Plan").Create(progress)
	if result.Error != nil {
		// in_progress の二重作成は部分ユニークインデックス違反 -> ErrConflict
		logger.Warn("Error creating progress in DB",
			"error", result.Error,
			"enrollment_id", progress.EnrollmentID.String(),
			"plan_id", progress.PlanID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormProgressRepository) FindActiveByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.CurriculumProgress, error) {
	var progress model.CurriculumProgress
	result := db.WithContext(ctx).
		Preload("Plan").
		Where("enrollment_id = ? AND status = ?", enrollmentID, model.ProgressInProgress).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding active progress in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindActiveByEnrollment: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) FindLastCompleted(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.CurriculumProgress, error) {
	var progress model.CurriculumProgress
	result := db.WithContext(ctx).
		Preload("Plan").
		Joins("JOIN curriculum_plans ON curriculum_plans.plan_id = student_curriculum_progress.plan_id").
		Where("student_curriculum_progress.enrollment_id = ? AND student_curriculum_progress.status = ?", enrollmentID, model.ProgressCompleted).
		Order("curriculum_plans.sequence DESC").
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding last completed progress in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindLastCompleted: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) ListByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]*model.CurriculumProgress, error) {
	var progresses []*model.CurriculumProgress
	result := db.WithContext(ctx).
		Preload("Plan").
		Joins("JOIN curriculum_plans ON curriculum_plans.plan_id = student_curriculum_progress.plan_id").
		Where("student_curriculum_progress.enrollment_id = ?", enrollmentID).
		Order("curriculum_plans.sequence ASC").
		Find(&progresses)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error listing progress in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return nil, fmt.Errorf("gormProgressRepository.ListByEnrollment: %w", result.Error)
	}
	return progresses, nil
}

func (r *gormProgressRepository) Complete(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, completedAt time.Time) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Model(&model.CurriculumProgress{}).
		Where("progress_id = ? AND status = ?", progressID, model.ProgressInProgress).
		Updates(map[string]interface{}{
			"status":                model.ProgressCompleted,
			"completion_percentage": 100,
			"completed_at":          completedAt,
		})
	if result.Error != nil {
		logger.Error("Error completing progress in DB", "error", result.Error, "progress_id", progressID.String())
		return fmt.Errorf("gormProgressRepository.Complete: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		logger.Warn("Progress already completed by another request", "progress_id", progressID.String())
		return fmt.Errorf("gormProgressRepository.Complete: %w", model.ErrConflict)
	}
	return nil
}
