package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationEventType string

const (
	EventRecitationRecorded NotificationEventType = "recitation_recorded"
	EventDailyReminder      NotificationEventType = "daily_reminder"
)

// NotificationEvent は通知ゲートウェイに渡すイベント。配信 (WhatsApp) はゲートウェイ側の責務
type NotificationEvent struct {
	Type       NotificationEventType `json:"type"`
	StudentID  uuid.UUID             `json:"student_id"`
	Recipient  string                `json:"recipient,omitempty"` // 保護者の電話番号 (E.164)
	OccurredAt time.Time             `json:"occurred_at"`
	Data       map[string]any        `json:"data,omitempty"`
}
