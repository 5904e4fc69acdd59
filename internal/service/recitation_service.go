//go:generate mockery --name RecitationService --output ./mocks --outpkg mocks --case=underscore
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

// RecitationService は記録済みセッションの参照と管理系の操作。
// 新規記録は TrackerService.RecordRecitationAndAdvance だけが行う。
type RecitationService interface {
	GetSession(ctx context.Context, sessionID string) (*model.RecitationSession, error)
	ListSessions(ctx context.Context, studentID uuid.UUID, filter model.SessionFilter) ([]*model.RecitationSession, error)
	// CorrectSession は記録内容を訂正する。進捗の再評価はしない
	CorrectSession(ctx context.Context, sessionID string, req *model.PatchRecitationRequest) (*model.RecitationSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AddErrors(ctx context.Context, sessionID string, req *model.AddRecitationErrorsRequest) (*model.RecitationSession, error)
}

const maxListLimit = 200

type recitationService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewRecitationService(db *gorm.DB, repos *repository.Repositories) RecitationService {
	return &recitationService{db: db, repos: repos}
}

func sessionNotFound() error {
	return model.NewAppError("SESSION_NOT_FOUND", "暗唱セッションが見つかりません。", "session_id", model.ErrNotFound)
}

func (s *recitationService) GetSession(ctx context.Context, sessionID string) (*model.RecitationSession, error) {
	session, err := s.repos.Recitation.FindBySessionID(ctx, s.db, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, sessionNotFound()
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
	}
	return session, nil
}

func (s *recitationService) ListSessions(ctx context.Context, studentID uuid.UUID, filter model.SessionFilter) ([]*model.RecitationSession, error) {
	if filter.RecitationType != "" && !filter.RecitationType.Valid() {
		return nil, model.NewAppError("VALIDATION_ERROR", "recitation_type が不正です。", "recitation_type", model.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, model.NewAppError("VALIDATION_ERROR", "from は to より前の日時を指定してください。", "from", model.ErrInvalidInput)
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if _, err := s.repos.Student.FindByID(ctx, s.db, studentID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("STUDENT_NOT_FOUND", "生徒が見つかりません。", "student_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の取得に失敗しました。", "", err)
	}

	sessions, err := s.repos.Recitation.ListByStudent(ctx, s.db, studentID, filter)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱記録の取得に失敗しました。", "", err)
	}
	return sessions, nil
}

func (s *recitationService) CorrectSession(ctx context.Context, sessionID string, req *model.PatchRecitationRequest) (*model.RecitationSession, error) {
	logger := middleware.GetLogger(ctx).With("session_id", sessionID)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Grade != nil {
		updates["grade"] = *req.Grade
		// 評価ラベルの指定がなければ評点から付け直す
		if req.Evaluation == nil {
			updates["evaluation"] = model.EvaluationForGrade(*req.Grade)
		}
	}
	if req.Evaluation != nil {
		updates["evaluation"] = *req.Evaluation
	}
	if req.TeacherNotes != nil {
		updates["teacher_notes"] = *req.TeacherNotes
	}
	if len(updates) == 0 {
		return nil, model.NewAppError("NO_FIELDS_TO_UPDATE", "更新する項目がありません。", "", model.ErrInvalidInput)
	}

	var updated *model.RecitationSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.repos.Recitation.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return sessionNotFound()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
		}
		if err := s.repos.Recitation.Update(ctx, tx, session.ID, updates); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの更新に失敗しました。", "", err)
		}
		updated, err = s.repos.Recitation.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Recitation session corrected", "fields", len(updates))
	return updated, nil
}

func (s *recitationService) DeleteSession(ctx context.Context, sessionID string) error {
	logger := middleware.GetLogger(ctx).With("session_id", sessionID)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.repos.Recitation.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return sessionNotFound()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
		}
		if err := s.repos.Recitation.Delete(ctx, tx, session.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return sessionNotFound()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの削除に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	// 削除しても進捗は巻き戻さない
	logger.Info("Recitation session deleted")
	return nil
}

func (s *recitationService) AddErrors(ctx context.Context, sessionID string, req *model.AddRecitationErrorsRequest) (*model.RecitationSession, error) {
	logger := middleware.GetLogger(ctx).With("session_id", sessionID)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}

	var updated *model.RecitationSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.repos.Recitation.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return sessionNotFound()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
		}

		rows := make([]*model.RecitationError, 0, len(req.Errors))
		for _, e := range req.Errors {
			rows = append(rows, &model.RecitationError{
				RecitationSessionID: session.ID,
				Surah:               e.Surah,
				Verse:               e.Verse,
				WordText:            e.WordText,
				ErrorType:           e.ErrorType,
				Severity:            e.Severity,
				IsRepeated:          e.IsRepeated,
			})
		}
		if err := s.repos.Recitation.CreateErrors(ctx, tx, rows); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "誤りの保存に失敗しました。", "", err)
		}
		if !session.HasErrors {
			if err := s.repos.Recitation.Update(ctx, tx, session.ID, map[string]interface{}{"has_errors": true}); err != nil {
				return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの更新に失敗しました。", "", err)
			}
		}
		updated, err = s.repos.Recitation.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱セッションの取得に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Recitation errors added", "count", len(req.Errors))
	return updated, nil
}
