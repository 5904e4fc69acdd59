package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyPlanSlot は当日ウィンドウ内の1プラン。
// Slot はプランが宣言する種別、ExpectedSlot は位置から期待される種別。
type DailyPlanSlot struct {
	Position     int             `json:"position"`
	Slot         PlanType        `json:"slot"`
	ExpectedSlot PlanType        `json:"expected_slot"`
	Plan         *PlanDescriptor `json:"plan"`
}

// SessionSummary は当日分セッションの要約
type SessionSummary struct {
	SessionID      string         `json:"session_id"`
	RecitationType RecitationType `json:"recitation_type"`
	Grade          float64        `json:"grade"`
	Evaluation     Evaluation     `json:"evaluation"`
	Status         SessionStatus  `json:"status"`
	Advanced       bool           `json:"advanced"`
	RecordedAt     time.Time      `json:"recorded_at"`
}

func NewSessionSummary(s *RecitationSession) SessionSummary {
	return SessionSummary{
		SessionID:      s.SessionID,
		RecitationType: s.RecitationType,
		Grade:          s.Grade,
		Evaluation:     s.Evaluation,
		Status:         s.Status,
		Advanced:       s.Advanced,
		RecordedAt:     s.RecordedAt,
	}
}

// DailyCurriculumResponse は「今日暗唱すべき内容」
type DailyCurriculumResponse struct {
	StudentID           uuid.UUID                           `json:"student_id"`
	EnrollmentID        uuid.UUID                           `json:"enrollment_id"`
	CurriculumID        uuid.UUID                           `json:"curriculum_id"`
	CurriculumName      string                              `json:"curriculum_name"`
	Date                string                              `json:"date"` // YYYY-MM-DD (設定タイムゾーン)
	CurriculumCompleted bool                                `json:"curriculum_completed"`
	CurrentPlan         *PlanDescriptor                     `json:"current_plan"`
	Plans               []DailyPlanSlot                     `json:"plans"`
	Memorization        *PlanDescriptor                     `json:"memorization"`
	MinorReview         *PlanDescriptor                     `json:"minor_review"`
	MajorReview         *PlanDescriptor                     `json:"major_review"`
	TodaySessions       map[RecitationType][]SessionSummary `json:"today_sessions"`
	CompletedSlots      []RecitationType                    `json:"completed_slots"`
	Warnings            []string                            `json:"warnings"`
}

// RecordRecitationRequest は暗唱記録APIのリクエストボディ
type RecordRecitationRequest struct {
	RecitationType RecitationType `json:"recitation_type" validate:"required,recitation_type"`
	VerseRange
	Grade         *float64   `json:"grade" validate:"required,gte=0,lte=10"`
	Evaluation    Evaluation `json:"evaluation" validate:"omitempty,evaluation"`
	Notes         string     `json:"notes" validate:"max=2000"`
	MarkCompleted bool       `json:"mark_completed"`
}

// RecordRecitationInput はトラッカーへの入力。TeacherID は認証済みの評価者
type RecordRecitationInput struct {
	StudentID      uuid.UUID      `json:"student_id" validate:"required"`
	TeacherID      uuid.UUID      `json:"teacher_id" validate:"required"`
	RecitationType RecitationType `json:"recitation_type" validate:"required,recitation_type"`
	Range          VerseRange     `json:"range"`
	Grade          float64        `json:"grade" validate:"gte=0,lte=10"`
	Evaluation     Evaluation     `json:"evaluation" validate:"omitempty,evaluation"`
	Notes          string         `json:"notes" validate:"max=2000"`
	MarkCompleted  bool           `json:"mark_completed"`
}

// RecordRecitationResponse は記録結果。
// Advanced が true のとき NextPlan か CurriculumCompleted のどちらかが入る。
type RecordRecitationResponse struct {
	SessionID           string          `json:"session_id"`
	Advanced            bool            `json:"advanced"`
	NextPlan            *PlanDescriptor `json:"next_plan"`
	CurriculumCompleted bool            `json:"curriculum_completed"`
	Evaluation          Evaluation      `json:"evaluation"`
}

type ReadinessVerdict string

const (
	ReadinessReady         ReadinessVerdict = "ready"
	ReadinessNeedsPractice ReadinessVerdict = "needs_practice"
	ReadinessNoData        ReadinessVerdict = "no_data"
)

// ReadinessInput は進級判定器に渡す材料
type ReadinessInput struct {
	StudentID uuid.UUID
	Plan      *CurriculumPlan
	Progress  *CurriculumProgress
	Sessions  []*RecitationSession // 直近の新規暗記セッション (新しい順)
	Now       time.Time
}

type ReadinessMetrics struct {
	SessionCount   int     `json:"session_count"`
	AverageGrade   float64 `json:"average_grade"`
	BestGrade      float64 `json:"best_grade"`
	PassingCount   int     `json:"passing_count"`
	PassingStreak  int     `json:"passing_streak"`
	AttemptsOnPlan int     `json:"attempts_on_plan"`
	DaysOnPlan     int     `json:"days_on_plan"`
	ExpectedDays   int     `json:"expected_days"`
	OverdueByDays  int     `json:"overdue_by_days"`
	PassingGrade   float64 `json:"passing_grade"`
	WindowSessions int     `json:"window_sessions"`
}

type ReadinessResponse struct {
	StudentID   uuid.UUID        `json:"student_id"`
	CurrentPlan *PlanDescriptor  `json:"current_plan"`
	Verdict     ReadinessVerdict `json:"verdict"`
	Metrics     ReadinessMetrics `json:"metrics"`
}
