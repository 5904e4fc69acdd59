package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student は暗記クラスの生徒
type Student struct {
	StudentID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"student_id"`
	Name          string         `gorm:"not null" json:"name"`
	GuardianPhone string         `gorm:"type:varchar(32)" json:"guardian_phone,omitempty"` // リマインダー送信先 (任意)
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// 生徒作成リクエストDTO
type CreateStudentRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	GuardianPhone string `json:"guardian_phone" validate:"omitempty,e164"`
}
