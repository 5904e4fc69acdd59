package model

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed" // 終端状態
)

// CurriculumEnrollment は生徒とカリキュラムの紐付け。
// Version は進捗ポインタが動くたびに加算され、楽観ロックに使う。
type CurriculumEnrollment struct {
	EnrollmentID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"enrollment_id"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_enrollment_student;index:idx_enrollment_one_active,unique,where:status = 'in_progress'" json:"student_id"`
	CurriculumID uuid.UUID        `gorm:"type:uuid;not null;index" json:"curriculum_id"`
	Status       EnrollmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	Version      int              `gorm:"not null;default:1" json:"version"`
	StartedAt    time.Time        `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// 関連 (Preload用)
	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID" json:"-"`
	Curriculum *Curriculum `gorm:"foreignKey:CurriculumID;references:CurriculumID" json:"-"`
}

func (CurriculumEnrollment) TableName() string {
	return "student_curricula"
}

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// CurriculumProgress は受講中のプランを指すポインタ行。
// 1受講につき in_progress の行は高々1つ (部分ユニークインデックスで保証)。
type CurriculumProgress struct {
	ProgressID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"progress_id"`
	EnrollmentID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_progress_enrollment;index:idx_progress_one_active,unique,where:status = 'in_progress'" json:"enrollment_id"`
	PlanID               uuid.UUID      `gorm:"type:uuid;not null" json:"plan_id"`
	Status               ProgressStatus `gorm:"type:varchar(20);not null" json:"status"`
	CompletionPercentage int            `gorm:"not null;default:0" json:"completion_percentage"`
	StartedAt            time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	Plan *CurriculumPlan `gorm:"foreignKey:PlanID;references:PlanID" json:"plan,omitempty"`
}

func (CurriculumProgress) TableName() string {
	return "student_curriculum_progress"
}

// 受講登録リクエストDTO
type EnrollRequest struct {
	CurriculumID string `json:"curriculum_id" validate:"required,uuid"`
}

// EnrollmentResponse は受講状況と進捗履歴
type EnrollmentResponse struct {
	Enrollment      *CurriculumEnrollment `json:"enrollment"`
	CurriculumName  string                `json:"curriculum_name"`
	TotalPlans      int                   `json:"total_plans"`
	CompletedPlans  int                   `json:"completed_plans"`
	CurrentProgress *CurriculumProgress   `json:"current_progress,omitempty"`
	History         []*CurriculumProgress `json:"history"`
}
