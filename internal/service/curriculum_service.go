//go:generate mockery --name CurriculumService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CurriculumService interface {
	CreateCurriculum(ctx context.Context, req *model.CreateCurriculumRequest) (*model.Curriculum, error)
	GetCurriculum(ctx context.Context, curriculumID uuid.UUID) (*model.Curriculum, error)
	ListCurricula(ctx context.Context) ([]*model.Curriculum, error)
}

type curriculumService struct {
	db             *gorm.DB
	curriculumRepo repository.CurriculumRepository
}

func NewCurriculumService(db *gorm.DB, repo repository.CurriculumRepository) CurriculumService {
	return &curriculumService{db: db, curriculumRepo: repo}
}

// CreateCurriculum はカリキュラムとプランを1トランザクションで作る。
// sequence は連番である必要はないがカリキュラム内で一意であること。
func (s *curriculumService) CreateCurriculum(ctx context.Context, req *model.CreateCurriculumRequest) (*model.Curriculum, error) {
	logger := middleware.GetLogger(ctx)
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(req.Plans))
	for _, p := range req.Plans {
		if _, dup := seen[p.Sequence]; dup {
			return nil, model.NewAppError("DUPLICATE_SEQUENCE",
				fmt.Sprintf("sequence %d が重複しています。", p.Sequence), "plans", model.ErrInvalidInput)
		}
		seen[p.Sequence] = struct{}{}
	}

	curriculum := &model.Curriculum{
		CurriculumID: uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
	}
	for _, p := range req.Plans {
		content, err := json.Marshal(p.Content)
		if err != nil {
			return nil, model.NewAppError("INVALID_PLAN_CONTENT", "プランの範囲を変換できません。", "plans", errors.Join(model.ErrInvalidInput, err))
		}
		expectedDays := p.ExpectedDays
		if expectedDays == 0 {
			expectedDays = 1
		}
		curriculum.Plans = append(curriculum.Plans, model.CurriculumPlan{
			PlanID:       uuid.New(),
			CurriculumID: curriculum.CurriculumID,
			Sequence:     p.Sequence,
			PlanType:     p.PlanType,
			Content:      datatypes.JSON(content),
			ExpectedDays: expectedDays,
		})
	}
	sort.Slice(curriculum.Plans, func(i, j int) bool {
		return curriculum.Plans[i].Sequence < curriculum.Plans[j].Sequence
	})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.curriculumRepo.Create(ctx, tx, curriculum)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("DUPLICATE_SEQUENCE", "sequence が重複しています。", "plans", model.ErrInvalidInput)
		}
		logger.Error("Failed to create curriculum", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラムの作成に失敗しました。", "", err)
	}
	logger.Info("Curriculum created", "curriculum_id", curriculum.CurriculumID, "plans", len(curriculum.Plans))
	return curriculum, nil
}

func (s *curriculumService) GetCurriculum(ctx context.Context, curriculumID uuid.UUID) (*model.Curriculum, error) {
	curriculum, err := s.curriculumRepo.FindByID(ctx, s.db, curriculumID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("CURRICULUM_NOT_FOUND", "カリキュラムが見つかりません。", "curriculum_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラムの取得に失敗しました。", "", err)
	}
	return curriculum, nil
}

func (s *curriculumService) ListCurricula(ctx context.Context) ([]*model.Curriculum, error) {
	curricula, err := s.curriculumRepo.List(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラム一覧の取得に失敗しました。", "", err)
	}
	return curricula, nil
}
