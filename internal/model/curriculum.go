package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PlanType はカリキュラムプランの種別
type PlanType string

const (
	PlanTypeMemorization PlanType = "memorization" // 新規暗記
	PlanTypeMinorReview  PlanType = "minor_review" // 小復習
	PlanTypeMajorReview  PlanType = "major_review" // 大復習
)

// DailyCycle は1日分のプランが従うべき種別の並び
var DailyCycle = []PlanType{PlanTypeMemorization, PlanTypeMinorReview, PlanTypeMajorReview}

func (t PlanType) Valid() bool {
	switch t {
	case PlanTypeMemorization, PlanTypeMinorReview, PlanTypeMajorReview:
		return true
	}
	return false
}

// VerseRange はスーラ番号と節番号で表す暗唱範囲
type VerseRange struct {
	StartSurah int `json:"start_surah" validate:"surah"`
	StartVerse int `json:"start_verse" validate:"min=1"`
	EndSurah   int `json:"end_surah" validate:"surah"`
	EndVerse   int `json:"end_verse" validate:"min=1"`
}

// Curriculum は順序付きのプランを持つシラバス
type Curriculum struct {
	CurriculumID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"curriculum_id"`
	Name         string           `gorm:"not null" json:"name"`
	Description  string           `json:"description,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Plans        []CurriculumPlan `gorm:"foreignKey:CurriculumID;references:CurriculumID" json:"plans,omitempty"`
}

func (Curriculum) TableName() string {
	return "curricula"
}

// CurriculumPlan はカリキュラム内の1単位。順序は Sequence のみで決まる
type CurriculumPlan struct {
	PlanID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"plan_id"`
	CurriculumID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_curriculum_sequence" json:"curriculum_id"`
	Sequence     int            `gorm:"not null;uniqueIndex:idx_curriculum_sequence" json:"sequence"`
	PlanType     PlanType       `gorm:"type:varchar(20);not null" json:"plan_type"`
	Content      datatypes.JSON `json:"content"` // []VerseRange
	ExpectedDays int            `gorm:"not null;default:1" json:"expected_days"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (CurriculumPlan) TableName() string {
	return "curriculum_plans"
}

// Ranges は Content を暗唱範囲のスライスとして読み出す
func (p *CurriculumPlan) Ranges() ([]VerseRange, error) {
	if len(p.Content) == 0 {
		return nil, nil
	}
	var ranges []VerseRange
	if err := json.Unmarshal(p.Content, &ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}

// PlanDescriptor はレスポンス用のプラン表現
type PlanDescriptor struct {
	PlanID       uuid.UUID      `json:"plan_id"`
	Sequence     int            `json:"sequence"`
	PlanType     PlanType       `json:"plan_type"`
	Content      datatypes.JSON `json:"content"`
	ExpectedDays int            `json:"expected_days"`
}

func NewPlanDescriptor(p *CurriculumPlan) *PlanDescriptor {
	if p == nil {
		return nil
	}
	return &PlanDescriptor{
		PlanID:       p.PlanID,
		Sequence:     p.Sequence,
		PlanType:     p.PlanType,
		Content:      p.Content,
		ExpectedDays: p.ExpectedDays,
	}
}

// カリキュラム作成リクエストDTO
type CreateCurriculumRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Plans       []CreatePlanRequest `json:"plans" validate:"required,min=1,dive"`
}

type CreatePlanRequest struct {
	Sequence     int          `json:"sequence" validate:"required,min=1"`
	PlanType     PlanType     `json:"plan_type" validate:"required,plan_type"`
	Content      []VerseRange `json:"content" validate:"required,min=1,dive"`
	ExpectedDays int          `json:"expected_days" validate:"omitempty,min=1,max=365"`
}
