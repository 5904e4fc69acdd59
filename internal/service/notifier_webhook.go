package service

import (
	"context"
	"fmt"
	"time"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier は通知イベントを JSON で通知ゲートウェイへ POST する
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(cfg config.NotifierConfig) *WebhookNotifier {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = config.DefaultNotifierTimeoutSeconds
	}
	client := resty.New().
		SetTimeout(time.Duration(timeout)*time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", config.AppName+"/"+config.AppVersion).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 5xx のみ再送する
			return err != nil || r.StatusCode() >= 500
		})
	if cfg.WebhookToken != "" {
		client.SetAuthToken(cfg.WebhookToken)
	}
	return &WebhookNotifier{client: client, url: cfg.WebhookURL}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event model.NotificationEvent) error {
	logger := middleware.GetLogger(ctx).With("event_type", event.Type, "student_id", event.StudentID)

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		logger.Error("Failed to call notification gateway", "error", err, "url", n.url)
		return fmt.Errorf("WebhookNotifier.Notify: %w", err)
	}
	if resp.IsError() {
		logger.Error("Notification gateway returned error status",
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return fmt.Errorf("WebhookNotifier.Notify: gateway returned status %d", resp.StatusCode())
	}
	logger.Info("Notification handed to gateway", "status", resp.StatusCode())
	return nil
}
