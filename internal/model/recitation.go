package model

import (
	"time"

	"github.com/google/uuid"
)

// RecitationType は暗唱の種別 (プラン種別 + 定着)
type RecitationType string

const (
	RecitationMemorization  RecitationType = "memorization"
	RecitationMinorReview   RecitationType = "minor_review"
	RecitationMajorReview   RecitationType = "major_review"
	RecitationConsolidation RecitationType = "consolidation"
)

func (t RecitationType) Valid() bool {
	switch t {
	case RecitationMemorization, RecitationMinorReview, RecitationMajorReview, RecitationConsolidation:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionOngoing    SessionStatus = "ongoing"
	SessionIncomplete SessionStatus = "incomplete"
	SessionCompleted  SessionStatus = "completed"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionOngoing, SessionIncomplete, SessionCompleted:
		return true
	}
	return false
}

// Evaluation は評点に対応する評価ラベル
type Evaluation string

const (
	EvaluationExcellent  Evaluation = "excellent"
	EvaluationVeryGood   Evaluation = "very_good"
	EvaluationGood       Evaluation = "good"
	EvaluationAcceptable Evaluation = "acceptable"
	EvaluationWeak       Evaluation = "weak"
)

func (e Evaluation) Valid() bool {
	switch e {
	case EvaluationExcellent, EvaluationVeryGood, EvaluationGood, EvaluationAcceptable, EvaluationWeak:
		return true
	}
	return false
}

// 評点は 0〜10
const (
	MinGrade = 0.0
	MaxGrade = 10.0
	// AdvancementGrade 以上の新規暗記で次のプランへ進む
	AdvancementGrade = 7.0
)

// EvaluationForGrade は評点から評価ラベルを決める
func EvaluationForGrade(grade float64) Evaluation {
	switch {
	case grade >= 9:
		return EvaluationExcellent
	case grade >= 8:
		return EvaluationVeryGood
	case grade >= AdvancementGrade:
		return EvaluationGood
	case grade >= 5:
		return EvaluationAcceptable
	default:
		return EvaluationWeak
	}
}

// QualifiesForAdvancement は進捗を進める条件。復習は評点に関係なく進めない。
func QualifiesForAdvancement(t RecitationType, grade float64) bool {
	return t == RecitationMemorization && grade >= AdvancementGrade
}

// RecitationSession は1回の暗唱記録。外部からは SessionID で参照する
type RecitationSession struct {
	ID             uint           `gorm:"primaryKey" json:"-"`
	SessionID      string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_id"`
	StudentID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_session_student_recorded" json:"student_id"`
	TeacherID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	EnrollmentID   *uuid.UUID     `gorm:"type:uuid;index" json:"enrollment_id,omitempty"`
	PlanID         *uuid.UUID     `gorm:"type:uuid;index" json:"plan_id,omitempty"` // 記録時点の受講中プラン
	RecitationType RecitationType `gorm:"type:varchar(20);not null" json:"recitation_type"`
	StartSurah     int            `gorm:"not null" json:"start_surah"`
	StartVerse     int            `gorm:"not null" json:"start_verse"`
	EndSurah       int            `gorm:"not null" json:"end_surah"`
	EndVerse       int            `gorm:"not null" json:"end_verse"`
	Grade          float64        `gorm:"not null" json:"grade"`
	Evaluation     Evaluation     `gorm:"type:varchar(20)" json:"evaluation"`
	Status         SessionStatus  `gorm:"type:varchar(20);not null" json:"status"`
	HasErrors      bool           `gorm:"not null;default:false" json:"has_errors"`
	TeacherNotes   string         `json:"teacher_notes,omitempty"`
	Advanced       bool           `gorm:"not null;default:false" json:"advanced"`
	RecordedAt     time.Time      `gorm:"not null;index:idx_session_student_recorded" json:"recorded_at"` // UTC
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Errors []RecitationError `gorm:"foreignKey:RecitationSessionID;references:ID;constraint:OnDelete:CASCADE" json:"errors,omitempty"`
}

func (RecitationSession) TableName() string {
	return "recitation_sessions"
}

type ErrorType string

const (
	ErrorTypePronunciation ErrorType = "pronunciation"
	ErrorTypeTajweed       ErrorType = "tajweed"
	ErrorTypeMemorization  ErrorType = "memorization"
	ErrorTypeDiacritics    ErrorType = "diacritics"
	ErrorTypeOther         ErrorType = "other"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// RecitationError は暗唱中の誤り。セッション削除時に一緒に削除される
type RecitationError struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	RecitationSessionID uint      `gorm:"not null;index" json:"-"`
	Surah               int       `gorm:"not null" json:"surah"`
	Verse               int       `gorm:"not null" json:"verse"`
	WordText            string    `json:"word_text,omitempty"`
	ErrorType           ErrorType `gorm:"type:varchar(20);not null" json:"error_type"`
	Severity            Severity  `gorm:"type:varchar(20);not null" json:"severity"`
	IsRepeated          bool      `gorm:"not null;default:false" json:"is_repeated"`
	CreatedAt           time.Time `json:"created_at"`
}

func (RecitationError) TableName() string {
	return "recitation_errors"
}

// SessionFilter はセッション一覧の絞り込み条件
type SessionFilter struct {
	From           *time.Time
	To             *time.Time // 排他的
	RecitationType RecitationType
	PlanID         *uuid.UUID
	Limit          int
}

// セッション訂正リクエストDTO。進捗の再評価は行わない
type PatchRecitationRequest struct {
	Status       *SessionStatus `json:"status,omitempty" validate:"omitempty,session_status"`
	Grade        *float64       `json:"grade,omitempty" validate:"omitempty,gte=0,lte=10"`
	Evaluation   *Evaluation    `json:"evaluation,omitempty" validate:"omitempty,evaluation"`
	TeacherNotes *string        `json:"teacher_notes,omitempty" validate:"omitempty,max=2000"`
}

type RecitationErrorRequest struct {
	Surah      int       `json:"surah" validate:"surah"`
	Verse      int       `json:"verse" validate:"min=1"`
	WordText   string    `json:"word_text" validate:"max=200"`
	ErrorType  ErrorType `json:"error_type" validate:"required,oneof=pronunciation tajweed memorization diacritics other"`
	Severity   Severity  `json:"severity" validate:"required,oneof=minor moderate major"`
	IsRepeated bool      `json:"is_repeated"`
}

type AddRecitationErrorsRequest struct {
	Errors []RecitationErrorRequest `json:"errors" validate:"required,min=1,max=100,dive"`
}
