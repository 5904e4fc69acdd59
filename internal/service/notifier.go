//go:generate mockery --name Notifier --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"log/slog"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/metrics"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
)

// Notifier は保護者向け通知のイベントを外部へ渡す。
// 実際の WhatsApp 配信はゲートウェイ側の責務。
type Notifier interface {
	Notify(ctx context.Context, event model.NotificationEvent) error
}

// --- LogNotifier ---
type LogNotifier struct{}

func (n *LogNotifier) Notify(ctx context.Context, event model.NotificationEvent) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Notification (LogNotifier) ---",
		"event_type", event.Type,
		"student_id", event.StudentID,
		"recipient", event.Recipient,
		"data", event.Data,
	)
	return nil
}

// --- meteredNotifier ---
type meteredNotifier struct {
	next    Notifier
	metrics *metrics.Metrics
}

func (n *meteredNotifier) Notify(ctx context.Context, event model.NotificationEvent) error {
	err := n.next.Notify(ctx, event)
	result := "ok"
	if err != nil {
		result = "error"
	}
	n.metrics.IncrementNotification(string(event.Type), result)
	return err
}

// --- NewNotifier ファクトリ関数 ---
func NewNotifier(cfg *config.Config, m *metrics.Metrics) Notifier {
	logger := slog.Default()
	var n Notifier
	switch cfg.Notifier.Type {
	case "webhook":
		if cfg.Notifier.WebhookURL == "" {
			logger.Warn("Webhook notifier selected without webhook_url, defaulting to LogNotifier")
			n = &LogNotifier{}
			break
		}
		logger.Info("Initializing webhook notifier...", "url", cfg.Notifier.WebhookURL)
		n = NewWebhookNotifier(cfg.Notifier)
	case "log", "":
		logger.Info("Initializing log notifier...")
		n = &LogNotifier{}
	default:
		logger.Warn("Unknown notifier type, defaulting to LogNotifier", "type", cfg.Notifier.Type)
		n = &LogNotifier{}
	}
	return &meteredNotifier{next: n, metrics: m}
}
