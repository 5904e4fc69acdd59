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

type RecitationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.RecitationSession) error
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*model.RecitationSession, error) // Errors を Preload
	ListByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID, filter model.SessionFilter) ([]*model.RecitationSession, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error // 誤り行も削除
	CreateErrors(ctx context.Context, tx *gorm.DB, errs []*model.RecitationError) error
}

type gormRecitationRepository struct{}

func NewGormRecitationRepository() RecitationRepository {
	return &gormRecitationRepository{}
}

func (r *gormRecitationRepository) Create(ctx context.Context, tx *gorm.DB, session *model.RecitationSession) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(session)
	if result.Error != nil {
		logger.Error("Error creating recitation session in DB",
			"error", result.Error,
			"session_id", session.SessionID,
			"student_id", session.StudentID.String(),
		)
		return fmt.Errorf("gormRecitationRepository.Create: %w", translateError(result.Error))
	}
	return nil
}

func (r *gormRecitationRepository) FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*model.RecitationSession, error) {
	var session model.RecitationSession
	result := db.WithContext(ctx).
		Preload("Errors", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("session_id = ?", sessionID).
		First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding recitation session in DB", "error", result.Error, "session_id", sessionID)
		return nil, fmt.Errorf("gormRecitationRepository.FindBySessionID: %w", result.Error)
	}
	return &session, nil
}

// ListByStudent は新しい順に返す
func (r *gormRecitationRepository) ListByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID, filter model.SessionFilter) ([]*model.RecitationSession, error) {
	var sessions []*model.RecitationSession
	query := db.WithContext(ctx).Where("student_id = ?", studentID)
	if filter.From != nil {
		query = query.Where("recorded_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("recorded_at < ?", filter.To.UTC())
	}
	if filter.RecitationType != "" {
		query = query.Where("recitation_type = ?", filter.RecitationType)
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	result := query.Order("recorded_at DESC").Order("id DESC").Find(&sessions)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error listing recitation sessions in DB", "error", result.Error, "student_id", studentID.String())
		return nil, fmt.Errorf("gormRecitationRepository.ListByStudent: %w", result.Error)
	}
	return sessions, nil
}

func (r *gormRecitationRepository) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.RecitationSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating recitation session in DB", "error", result.Error, "id", id)
		return fmt.Errorf("gormRecitationRepository.Update: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormRecitationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	logger := middleware.GetLogger(ctx)
	// FK の ON DELETE CASCADE に頼らず明示的に消す (SQLite は外部キーが既定で無効)
	if result := tx.WithContext(ctx).Where("recitation_session_id = ?", id).Delete(&model.RecitationError{}); result.Error != nil {
		logger.Error("Error deleting recitation errors in DB", "error", result.Error, "id", id)
		return fmt.Errorf("gormRecitationRepository.Delete: %w", result.Error)
	}
	result := tx.WithContext(ctx).Delete(&model.RecitationSession{}, id)
	if result.Error != nil {
		logger.Error("Error deleting recitation session in DB", "error", result.Error, "id", id)
		return fmt.Errorf("gormRecitationRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormRecitationRepository) CreateErrors(ctx context.Context, tx *gorm.DB, errs []*model.RecitationError) error {
	if len(errs) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Create(&errs)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error creating recitation errors in DB", "error", result.Error, "count", len(errs))
		return fmt.Errorf("gormRecitationRepository.CreateErrors: %w", translateError(result.Error))
	}
	return nil
}
