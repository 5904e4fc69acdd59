package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Teacher は暗唱を評価する教師。JWT の subject は TeacherID
type Teacher struct {
	TeacherID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"teacher_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(32)" json:"phone,omitempty"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Teacher) TableName() string {
	return "teachers"
}

type ContextKey string

const (
	TeacherIDKey ContextKey = "teacherID"
)

// 教師作成リクエストDTO
type CreateTeacherRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,e164"`
}
