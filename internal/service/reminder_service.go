package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/metrics"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderDeduper は同じ生徒・同じ日のリマインダーを一度だけ送るための排他。
// 複数レプリカで動かすときは Redis 実装を渡す。
type ReminderDeduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type noopDeduper struct{}

func (noopDeduper) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }

// リマインダーの排他キーの有効期間
const reminderClaimTTL = 36 * time.Hour

type ReminderService interface {
	// SendDailyReminders は受講中の全生徒の保護者へ当日の課題を通知し、送信件数を返す
	SendDailyReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	tracker  TrackerService
	notifier Notifier
	deduper  ReminderDeduper
	metrics  *metrics.Metrics
	loc      *time.Location
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, repos *repository.Repositories, tracker TrackerService, notifier Notifier, deduper ReminderDeduper, cfg *config.Config, m *metrics.Metrics) ReminderService {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil || cfg.App.Timezone == "" {
		loc = time.UTC
	}
	if deduper == nil {
		deduper = noopDeduper{}
	}
	return &reminderService{
		db:       db,
		repos:    repos,
		tracker:  tracker,
		notifier: notifier,
		deduper:  deduper,
		metrics:  m,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *reminderService) SendDailyReminders(ctx context.Context) (int, error) {
	logger := middleware.GetLogger(ctx)

	enrollments, err := s.repos.Enrollment.ListActive(ctx, s.db)
	if err != nil {
		logger.Error("Failed to list active enrollments", "error", err)
		return 0, fmt.Errorf("reminderService.SendDailyReminders: %w", err)
	}

	date := s.now().In(s.loc).Format("2006-01-02")
	sent := 0
	for _, enrollment := range enrollments {
		student := enrollment.Student
		if student == nil || !student.IsActive || student.GuardianPhone == "" {
			continue
		}
		studentLogger := logger.With("student_id", student.StudentID)

		key := fmt.Sprintf("reminder:%s:%s", student.StudentID, date)
		claimed, err := s.deduper.Claim(ctx, key, reminderClaimTTL)
		if err != nil {
			studentLogger.Warn("Reminder dedupe failed, skipping student", "error", err)
			continue
		}
		if !claimed {
			studentLogger.Debug("Reminder already sent today")
			continue
		}

		daily, err := s.tracker.GetDailyCurriculum(middleware.WithLogger(ctx, studentLogger), student.StudentID)
		if err != nil {
			studentLogger.Warn("Failed to build daily curriculum for reminder", "error", err)
			continue
		}
		if daily.CurriculumCompleted {
			continue
		}

		event := model.NotificationEvent{
			Type:       model.EventDailyReminder,
			StudentID:  student.StudentID,
			Recipient:  student.GuardianPhone,
			OccurredAt: s.now().UTC(),
			Data: map[string]any{
				"student_name":    student.Name,
				"curriculum_name": daily.CurriculumName,
				"date":            daily.Date,
				"memorization":    daily.Memorization,
				"minor_review":    daily.MinorReview,
				"major_review":    daily.MajorReview,
			},
		}
		if err := s.notifier.Notify(ctx, event); err != nil {
			studentLogger.Warn("Failed to hand reminder to notifier", "error", err)
			continue
		}
		sent++
		s.metrics.IncrementReminderSent()
	}

	logger.Info("Daily reminders dispatched", "date", date, "enrollments", len(enrollments), "sent", sent)
	return sent, nil
}

// StartReminderScheduler は cron でリマインダーを定期実行する。
// 無効設定なら nil を返す。呼び出し側は終了時に Stop() すること。
func StartReminderScheduler(cfg *config.Config, svc ReminderService, logger *slog.Logger) (*cron.Cron, error) {
	if !cfg.Reminder.Enabled {
		logger.Info("Reminder scheduler disabled")
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		loc = time.UTC
	}
	schedule := cfg.Reminder.Schedule
	if schedule == "" {
		schedule = config.DefaultReminderSchedule
	}

	jobLogger := logger.With("job", "daily_reminder")
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(middleware.WithLogger(context.Background(), jobLogger), 10*time.Minute)
		defer cancel()
		if _, err := svc.SendDailyReminders(ctx); err != nil {
			jobLogger.Error("Daily reminder job failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	logger.Info("Reminder scheduler started", "schedule", schedule, "timezone", loc.String())
	return c, nil
}
