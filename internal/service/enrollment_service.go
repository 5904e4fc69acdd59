//go:generate mockery --name EnrollmentService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"time"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentService は受講の開始と参照を扱う。
// 進捗行は作らない。最初の進捗はトラッカーが必要になった時点で作る。
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID uuid.UUID, req *model.EnrollRequest) (*model.CurriculumEnrollment, error)
	GetActiveEnrollment(ctx context.Context, studentID uuid.UUID) (*model.EnrollmentResponse, error)
}

type enrollmentService struct {
	db    *gorm.DB
	repos *repository.Repositories
	now   func() time.Time
}

func NewEnrollmentService(db *gorm.DB, repos *repository.Repositories) EnrollmentService {
	return &enrollmentService{db: db, repos: repos, now: time.Now}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID uuid.UUID, req *model.EnrollRequest) (*model.CurriculumEnrollment, error) {
	logger := middleware.GetLogger(ctx).With("student_id", studentID)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}
	curriculumID := uuid.MustParse(req.CurriculumID) // validate:"uuid" 済み

	var enrollment *model.CurriculumEnrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		student, err := s.repos.Student.FindByID(ctx, tx, studentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("STUDENT_NOT_FOUND", "生徒が見つかりません。", "student_id", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の取得に失敗しました。", "", err)
		}
		if !student.IsActive {
			return model.NewAppError("STUDENT_INACTIVE", "この生徒は無効化されています。", "student_id", model.ErrInvalidInput)
		}

		if _, err := s.repos.Curriculum.FindByID(ctx, tx, curriculumID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CURRICULUM_NOT_FOUND", "カリキュラムが見つかりません。", "curriculum_id", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラムの取得に失敗しました。", "", err)
		}

		if _, err := s.repos.Enrollment.FindActiveByStudent(ctx, tx, studentID); err == nil {
			return model.NewAppError("ALREADY_ENROLLED", "この生徒は既に受講中のカリキュラムがあります。", "curriculum_id", model.ErrConflict)
		} else if !errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講情報の取得に失敗しました。", "", err)
		}

		enrollment = &model.CurriculumEnrollment{
			EnrollmentID: uuid.New(),
			StudentID:    studentID,
			CurriculumID: curriculumID,
			Status:       model.EnrollmentInProgress,
			Version:      1,
			StartedAt:    s.now().UTC(),
		}
		if err := s.repos.Enrollment.Create(ctx, tx, enrollment); err != nil {
			// 同時登録は部分ユニークインデックスで弾かれる
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("ALREADY_ENROLLED", "この生徒は既に受講中のカリキュラムがあります。", "curriculum_id", model.ErrConflict)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Enrollment failed", "error", err, "curriculum_id", curriculumID)
		return nil, err
	}
	logger.Info("Student enrolled", "enrollment_id", enrollment.EnrollmentID, "curriculum_id", curriculumID)
	return enrollment, nil
}

func (s *enrollmentService) GetActiveEnrollment(ctx context.Context, studentID uuid.UUID) (*model.EnrollmentResponse, error) {
	logger := middleware.GetLogger(ctx).With("student_id", studentID)

	enrollment, err := s.repos.Enrollment.FindActiveByStudent(ctx, s.db, studentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NO_ACTIVE_CURRICULUM", "受講中のカリキュラムがありません。", "student_id", model.ErrNoActiveCurriculum)
		}
		logger.Error("Failed to find active enrollment", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講情報の取得に失敗しました。", "", err)
	}

	curriculum, err := s.repos.Curriculum.FindByID(ctx, s.db, enrollment.CurriculumID)
	if err != nil {
		logger.Error("Failed to load curriculum", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラムの取得に失敗しました。", "", err)
	}

	history, err := s.repos.Progress.ListByEnrollment(ctx, s.db, enrollment.EnrollmentID)
	if err != nil {
		logger.Error("Failed to list progress history", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗履歴の取得に失敗しました。", "", err)
	}

	resp := &model.EnrollmentResponse{
		Enrollment:     enrollment,
		CurriculumName: curriculum.Name,
		TotalPlans:     len(curriculum.Plans),
		History:        history,
	}
	for _, p := range history {
		switch p.Status {
		case model.ProgressCompleted:
			resp.CompletedPlans++
		case model.ProgressInProgress:
			resp.CurrentProgress = p
		}
	}
	if resp.History == nil {
		resp.History = []*model.CurriculumProgress{}
	}
	return resp, nil
}
