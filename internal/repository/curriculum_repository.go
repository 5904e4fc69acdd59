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

// CurriculumRepository はカリキュラムとプランの読み書き。
// プランの順序は常に sequence で決め、主キーには依存しない。
type CurriculumRepository interface {
	Create(ctx context.Context, tx *gorm.DB, curriculum *model.Curriculum) error
	FindByID(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID) (*model.Curriculum, error) // Plans は sequence 順
	List(ctx context.Context, db *gorm.DB) ([]*model.Curriculum, error)
	FindFirstPlan(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID) (*model.CurriculumPlan, error)
	FindNextPlan(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID, afterSequence int) (*model.CurriculumPlan, error)
	FindPlanWindow(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID, fromSequence, limit int) ([]*model.CurriculumPlan, error)
}

type gormCurriculumRepository struct{}

func NewGormCurriculumRepository() CurriculumRepository {
	return &gormCurriculumRepository{}
}

func (r *gormCurriculumRepository) Create(ctx context.Context, tx *gorm.DB, curriculum *model.Curriculum) error {
	logger := middleware.GetLogger(ctx)
	// Plans も関連として一緒に INSERT される
	result := tx.WithContext(ctx).Create(curriculum)
	if result.Error != nil {
		logger.Error("Error creating curriculum in DB", "error", result.Error, "curriculum_id", curriculum.CurriculumID.String())
		return fmt.Errorf("gormCurriculumRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormCurriculumRepository) FindByID(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID) (*model.Curriculum, error) {
	logger := middleware.GetLogger(ctx)
	var curriculum model.Curriculum
	result := db.WithContext(ctx).
		Preload("Plans", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Where("curriculum_id = ?", curriculumID).
		First(&curriculum)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding curriculum by ID in DB", "error", result.Error, "curriculum_id", curriculumID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindByID: %w", result.Error)
	}
	return &curriculum, nil
}

func (r *gormCurriculumRepository) List(ctx context.Context, db *gorm.DB) ([]*model.Curriculum, error) {
	logger := middleware.GetLogger(ctx)
	var curricula []*model.Curriculum
	if result := db.WithContext(ctx).Order("name ASC").Find(&curricula); result.Error != nil {
		logger.Error("Error listing curricula in DB", "error", result.Error)
		return nil, fmt.Errorf("gormCurriculumRepository.List: %w", result.Error)
	}
	return curricula, nil
}

func (r *gormCurriculumRepository) FindFirstPlan(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID) (*model.CurriculumPlan, error) {
	var plan model.CurriculumPlan
	result := db.WithContext(ctx).
		Where("curriculum_id = ?", curriculumID).
		Order("sequence ASC").
		First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding first plan in DB", "error", result.Error, "curriculum_id", curriculumID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindFirstPlan: %w", result.Error)
	}
	return &plan, nil
}

// FindNextPlan は afterSequence より大きい最小の sequence を持つプランを返す
func (r *gormCurriculumRepository) FindNextPlan(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID, afterSequence int) (*model.CurriculumPlan, error) {
	var plan model.CurriculumPlan
	result := db.WithContext(ctx).
		Where("curriculum_id = ? AND sequence > ?", curriculumID, afterSequence).
		Order("sequence ASC").
		First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding next plan in DB",
			"error", result.Error,
			"curriculum_id", curriculumID.String(),
			"after_sequence", afterSequence,
		)
		return nil, fmt.Errorf("gormCurriculumRepository.FindNextPlan: %w", result.Error)
	}
	return &plan, nil
}

// FindPlanWindow は fromSequence 以降のプランを sequence 順に最大 limit 件返す
func (r *gormCurriculumRepository) FindPlanWindow(ctx context.Context, db *gorm.DB, curriculumID uuid.UUID, fromSequence, limit int) ([]*model.CurriculumPlan, error) {
	var plans []*model.CurriculumPlan
	result := db.WithContext(ctx).
		Where("curriculum_id = ? AND sequence >= ?", curriculumID, fromSequence).
		Order("sequence ASC").
		Limit(limit).
		Find(&plans)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error finding plan window in DB",
			"error", result.Error,
			"curriculum_id", curriculumID.String(),
			"from_sequence", fromSequence,
		)
		return nil, fmt.Errorf("gormCurriculumRepository.FindPlanWindow: %w", result.Error)
	}
	return plans, nil
}
