//go:generate mockery --name TrackerService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/metrics"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// dailyWindowSize は1日に提示するプラン数 (暗記・小復習・大復習)
const dailyWindowSize = 3

// TrackerService はカリキュラム進捗ポインタの唯一の持ち主。
// 進捗行 (student_curriculum_progress) への書き込みはすべてここを通る。
type TrackerService interface {
	GetDailyCurriculum(ctx context.Context, studentID uuid.UUID) (*model.DailyCurriculumResponse, error)
	RecordRecitationAndAdvance(ctx context.Context, input *model.RecordRecitationInput) (*model.RecordRecitationResponse, error)
	EvaluateProgressionReadiness(ctx context.Context, studentID uuid.UUID) (*model.ReadinessResponse, error)
}

type trackerService struct {
	db              *gorm.DB
	repos           *repository.Repositories
	evaluator       ReadinessEvaluator
	metrics         *metrics.Metrics
	loc             *time.Location
	readinessWindow int
	now             func() time.Time
}

func NewTrackerService(db *gorm.DB, repos *repository.Repositories, evaluator ReadinessEvaluator, cfg *config.Config, m *metrics.Metrics) TrackerService {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil || cfg.App.Timezone == "" {
		slog.Default().Warn("Invalid or empty timezone, falling back to UTC", "timezone", cfg.App.Timezone, "error", err)
		loc = time.UTC
	}
	window := cfg.App.ReadinessWindow
	if window <= 0 {
		window = config.DefaultReadinessWindow
	}
	if evaluator == nil {
		evaluator = NewHeuristicReadinessEvaluator()
	}
	return &trackerService{
		db:              db,
		repos:           repos,
		evaluator:       evaluator,
		metrics:         m,
		loc:             loc,
		readinessWindow: window,
		now:             time.Now,
	}
}

// --- GetDailyCurriculum ---

func (s *trackerService) GetDailyCurriculum(ctx context.Context, studentID uuid.UUID) (*model.DailyCurriculumResponse, error) {
	logger := middleware.GetLogger(ctx).With("student_id", studentID)

	if _, err := s.findStudent(ctx, s.db, studentID); err != nil {
		return nil, err
	}

	now := s.now()
	dayStart, dayEnd := s.dayBounds(now)

	var resp *model.DailyCurriculumResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repos.Enrollment.LockActiveByStudent(ctx, tx, studentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Info("No active curriculum for student")
				return model.NewAppError("NO_ACTIVE_CURRICULUM", "受講中のカリキュラムがありません。先に受講登録してください。", "student_id", model.ErrNoActiveCurriculum)
			}
			logger.Error("Failed to lock active enrollment", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講情報の取得に失敗しました。", "", err)
		}
		logger = logger.With("enrollment_id", enrollment.EnrollmentID)

		curriculum, err := s.repos.Curriculum.FindByID(ctx, tx, enrollment.CurriculumID)
		if err != nil {
			logger.Error("Failed to load enrolled curriculum", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カリキュラムの取得に失敗しました。", "", err)
		}

		resp = &model.DailyCurriculumResponse{
			StudentID:      studentID,
			EnrollmentID:   enrollment.EnrollmentID,
			CurriculumID:   curriculum.CurriculumID,
			CurriculumName: curriculum.Name,
			Date:           dayStart.Format("2006-01-02"),
			Plans:          []model.DailyPlanSlot{},
			TodaySessions:  map[model.RecitationType][]model.SessionSummary{},
			CompletedSlots: []model.RecitationType{},
			Warnings:       []string{},
		}

		current, err := s.ensureCurrentProgress(ctx, tx, enrollment, now)
		if err != nil {
			return err
		}
		if current == nil {
			// 全プラン完了済み。終端状態なのでエラーにはしない
			resp.CurriculumCompleted = true
		} else {
			window, err := s.repos.Curriculum.FindPlanWindow(ctx, tx, enrollment.CurriculumID, current.Plan.Sequence, dailyWindowSize)
			if err != nil {
				logger.Error("Failed to load plan window", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "プランの取得に失敗しました。", "", err)
			}
			resp.CurrentPlan = model.NewPlanDescriptor(current.Plan)
			s.fillPlanSlots(logger, resp, window)
		}

		sessions, err := s.repos.Recitation.ListByStudent(ctx, tx, studentID, model.SessionFilter{From: &dayStart, To: &dayEnd})
		if err != nil {
			logger.Error("Failed to load today's sessions", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "本日の暗唱記録の取得に失敗しました。", "", err)
		}
		fillTodaySessions(resp, sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Daily curriculum built",
		"plans", len(resp.Plans),
		"completed_slots", len(resp.CompletedSlots),
		"warnings", len(resp.Warnings),
		"curriculum_completed", resp.CurriculumCompleted,
	)
	return resp, nil
}

// ensureCurrentProgress は in_progress の進捗行を返す。なければ遅延作成する。
// 直前に完了したプランの次 (履歴がなければ最初のプラン) を指す行を作る。
// 次のプランがない場合は受講を完了にして nil を返す。
func (s *trackerService) ensureCurrentProgress(ctx context.Context, tx *gorm.DB, enrollment *model.CurriculumEnrollment, now time.Time) (*model.CurriculumProgress, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollment.EnrollmentID)

	current, err := s.repos.Progress.FindActiveByEnrollment(ctx, tx, enrollment.EnrollmentID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to find current progress", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の取得に失敗しました。", "", err)
	}

	last, err := s.repos.Progress.FindLastCompleted(ctx, tx, enrollment.EnrollmentID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to find last completed progress", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗履歴の取得に失敗しました。", "", err)
	}

	var plan *model.CurriculumPlan
	if last != nil && last.Plan != nil {
		plan, err = s.repos.Curriculum.FindNextPlan(ctx, tx, enrollment.CurriculumID, last.Plan.Sequence)
	} else {
		plan, err = s.repos.Curriculum.FindFirstPlan(ctx, tx, enrollment.CurriculumID)
	}
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to find plan for lazy progress", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プランの取得に失敗しました。", "", err)
		}
		if last == nil {
			logger.Warn("Enrolled curriculum has no plans")
			return nil, model.NewAppError("CURRICULUM_EMPTY", "カリキュラムにプランが登録されていません。", "curriculum_id", model.ErrNotFound)
		}
		// 最後のプランまで完了しているのに受講中のまま。終端状態に揃える
		logger.Warn("All plans completed but enrollment still in progress, completing enrollment")
		if err := s.completeEnrollment(ctx, tx, enrollment, now); err != nil {
			return nil, err
		}
		return nil, nil
	}

	progress := &model.CurriculumProgress{
		ProgressID:           uuid.New(),
		EnrollmentID:         enrollment.EnrollmentID,
		PlanID:               plan.PlanID,
		Status:               model.ProgressInProgress,
		CompletionPercentage: 0,
		StartedAt:            now.UTC(),
	}
	if err := s.repos.Progress.Create(ctx, tx, progress); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("PROGRESS_CONFLICT", "進捗が同時に更新されました。再試行してください。", "", err)
		}
		logger.Error("Failed to create lazy progress", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の作成に失敗しました。", "", err)
	}
	progress.Plan = plan
	logger.Info("Progress lazily initialized", "plan_id", plan.PlanID, "sequence", plan.Sequence)
	return progress, nil
}

// fillPlanSlots はプランを宣言された種別でスロットに振り分ける。
// 位置から期待される種別と違う場合は警告を残す (データ不整合)。
func (s *trackerService) fillPlanSlots(logger *slog.Logger, resp *model.DailyCurriculumResponse, window []*model.CurriculumPlan) {
	for i, plan := range window {
		expected := model.DailyCycle[i%len(model.DailyCycle)]
		descriptor := model.NewPlanDescriptor(plan)
		resp.Plans = append(resp.Plans, model.DailyPlanSlot{
			Position:     i + 1,
			Slot:         plan.PlanType,
			ExpectedSlot: expected,
			Plan:         descriptor,
		})

		if plan.PlanType != expected {
			msg := fmt.Sprintf("plan sequence %d is %s but position %d of the daily window expects %s", plan.Sequence, plan.PlanType, i+1, expected)
			resp.Warnings = append(resp.Warnings, msg)
			logger.Warn("Curriculum plan order breaks the memorization/minor/major cycle",
				"curriculum_id", resp.CurriculumID,
				"plan_id", plan.PlanID,
				"sequence", plan.Sequence,
				"plan_type", plan.PlanType,
				"expected", expected,
			)
		}

		switch plan.PlanType {
		case model.PlanTypeMemorization:
			if resp.Memorization == nil {
				resp.Memorization = descriptor
			}
		case model.PlanTypeMinorReview:
			if resp.MinorReview == nil {
				resp.MinorReview = descriptor
			}
		case model.PlanTypeMajorReview:
			if resp.MajorReview == nil {
				resp.MajorReview = descriptor
			}
		}
	}
}

// fillTodaySessions は当日のセッションを種別ごとにまとめる (古い順)
func fillTodaySessions(resp *model.DailyCurriculumResponse, sessions []*model.RecitationSession) {
	for i := len(sessions) - 1; i >= 0; i-- {
		sess := sessions[i]
		if _, seen := resp.TodaySessions[sess.RecitationType]; !seen {
			resp.CompletedSlots = append(resp.CompletedSlots, sess.RecitationType)
		}
		resp.TodaySessions[sess.RecitationType] = append(resp.TodaySessions[sess.RecitationType], model.NewSessionSummary(sess))
	}
}

// --- RecordRecitationAndAdvance ---

func (s *trackerService) RecordRecitationAndAdvance(ctx context.Context, input *model.RecordRecitationInput) (*model.RecordRecitationResponse, error) {
	if input == nil {
		return nil, model.NewAppError("INVALID_REQUEST_BODY", "入力がありません。", "", model.ErrInvalidInput)
	}
	logger := middleware.GetLogger(ctx).With("student_id", input.StudentID, "teacher_id", input.TeacherID)

	// トランザクションを開く前に検証する
	if err := webutil.ValidateStruct(input); err != nil {
		logger.Warn("Recitation input validation failed", "error", err)
		return nil, err
	}

	evaluation := input.Evaluation
	if evaluation == "" {
		evaluation = model.EvaluationForGrade(input.Grade)
	}
	status := model.SessionOngoing
	if input.MarkCompleted {
		status = model.SessionCompleted
	}

	now := s.now()
	var resp *model.RecordRecitationResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repos.Teacher.FindByID(ctx, tx, input.TeacherID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Evaluator does not reference an existing teacher")
				return model.NewAppError("TEACHER_NOT_FOUND", "評価者が教師として登録されていません。", "teacher_id", model.ErrInvalidInput)
			}
			logger.Error("Failed to find teacher", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "教師の確認に失敗しました。", "", err)
		}

		student, err := s.findStudent(ctx, tx, input.StudentID)
		if err != nil {
			return err
		}
		if !student.IsActive {
			return model.NewAppError("STUDENT_INACTIVE", "この生徒は無効化されています。", "student_id", model.ErrInvalidInput)
		}

		// 受講行をロックしてから現在の進捗を読む
		enrollment, err := s.repos.Enrollment.LockActiveByStudent(ctx, tx, input.StudentID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to lock active enrollment", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講情報の取得に失敗しました。", "", err)
		}

		var current *model.CurriculumProgress
		if enrollment != nil {
			current, err = s.ensureCurrentProgress(ctx, tx, enrollment, now)
			if err != nil {
				return err
			}
		}

		advance := current != nil && model.QualifiesForAdvancement(input.RecitationType, input.Grade)

		session := &model.RecitationSession{
			SessionID:      NewSessionID(now),
			StudentID:      input.StudentID,
			TeacherID:      input.TeacherID,
			RecitationType: input.RecitationType,
			StartSurah:     input.Range.StartSurah,
			StartVerse:     input.Range.StartVerse,
			EndSurah:       input.Range.EndSurah,
			EndVerse:       input.Range.EndVerse,
			Grade:          input.Grade,
			Evaluation:     evaluation,
			Status:         status,
			TeacherNotes:   input.Notes,
			Advanced:       advance,
			RecordedAt:     now.UTC(),
		}
		if enrollment != nil {
			session.EnrollmentID = &enrollment.EnrollmentID
		}
		if current != nil {
			session.PlanID = &current.PlanID
		}
		if err := s.repos.Recitation.Create(ctx, tx, session); err != nil {
			logger.Error("Failed to create recitation session", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱記録の保存に失敗しました。", "", err)
		}

		resp = &model.RecordRecitationResponse{
			SessionID:  session.SessionID,
			Advanced:   advance,
			Evaluation: evaluation,
		}
		if !advance {
			return nil
		}

		next, err := s.advance(ctx, tx, enrollment, current, now)
		if err != nil {
			return err
		}
		resp.NextPlan = model.NewPlanDescriptor(next)
		resp.CurriculumCompleted = next == nil
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.metrics.IncrementProgressConflict()
		}
		return nil, err
	}

	s.metrics.IncrementRecitationRecorded(string(input.RecitationType))
	if resp.Advanced {
		s.metrics.IncrementAdvancement()
	}
	if resp.CurriculumCompleted {
		s.metrics.IncrementCurriculumCompletion()
	}
	logger.Info("Recitation recorded",
		"session_id", resp.SessionID,
		"recitation_type", input.RecitationType,
		"grade", input.Grade,
		"advanced", resp.Advanced,
		"curriculum_completed", resp.CurriculumCompleted,
	)
	return resp, nil
}

// advance は現在のプランを完了にしてポインタを次へ進める。
// 次のプランがなければ受講を完了にして nil を返す。
func (s *trackerService) advance(ctx context.Context, tx *gorm.DB, enrollment *model.CurriculumEnrollment, current *model.CurriculumProgress, now time.Time) (*model.CurriculumPlan, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollment.EnrollmentID, "progress_id", current.ProgressID)

	next, err := s.repos.Curriculum.FindNextPlan(ctx, tx, enrollment.CurriculumID, current.Plan.Sequence)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to find next plan", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "次のプランの取得に失敗しました。", "", err)
	}
	if errors.Is(err, model.ErrNotFound) {
		next = nil
	}

	if err := s.repos.Progress.Complete(ctx, tx, current.ProgressID, now.UTC()); err != nil {
		return nil, s.progressWriteError(logger, "Failed to complete current progress", err)
	}

	if next == nil {
		if err := s.completeEnrollment(ctx, tx, enrollment, now); err != nil {
			return nil, err
		}
		logger.Info("Curriculum completed")
		return nil, nil
	}

	if err := s.repos.Enrollment.CompareAndUpdate(ctx, tx, enrollment.EnrollmentID, enrollment.Version, map[string]interface{}{}); err != nil {
		return nil, s.progressWriteError(logger, "Failed to bump enrollment version", err)
	}
	enrollment.Version++

	progress := &model.CurriculumProgress{
		ProgressID:           uuid.New(),
		EnrollmentID:         enrollment.EnrollmentID,
		PlanID:               next.PlanID,
		Status:               model.ProgressInProgress,
		CompletionPercentage: 0,
		StartedAt:            now.UTC(),
	}
	if err := s.repos.Progress.Create(ctx, tx, progress); err != nil {
		return nil, s.progressWriteError(logger, "Failed to create next progress", err)
	}
	logger.Info("Progress advanced", "from_sequence", current.Plan.Sequence, "to_sequence", next.Sequence)
	return next, nil
}

func (s *trackerService) completeEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.CurriculumEnrollment, now time.Time) error {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollment.EnrollmentID)
	completedAt := now.UTC()
	err := s.repos.Enrollment.CompareAndUpdate(ctx, tx, enrollment.EnrollmentID, enrollment.Version, map[string]interface{}{
		"status":       model.EnrollmentCompleted,
		"completed_at": completedAt,
	})
	if err != nil {
		return s.progressWriteError(logger, "Failed to complete enrollment", err)
	}
	enrollment.Version++
	enrollment.Status = model.EnrollmentCompleted
	enrollment.CompletedAt = &completedAt
	return nil
}

func (s *trackerService) progressWriteError(logger *slog.Logger, msg string, err error) error {
	if errors.Is(err, model.ErrConflict) {
		logger.Warn(msg+": concurrent advancement detected", "error", err)
		return model.NewAppError("PROGRESS_CONFLICT", "進捗が同時に更新されました。再試行してください。", "", err)
	}
	logger.Error(msg, "error", err)
	return model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の更新に失敗しました。", "", err)
}

// --- EvaluateProgressionReadiness ---

func (s *trackerService) EvaluateProgressionReadiness(ctx context.Context, studentID uuid.UUID) (*model.ReadinessResponse, error) {
	logger := middleware.GetLogger(ctx).With("student_id", studentID)

	if _, err := s.findStudent(ctx, s.db, studentID); err != nil {
		return nil, err
	}

	enrollment, err := s.repos.Enrollment.FindActiveByStudent(ctx, s.db, studentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NO_ACTIVE_CURRICULUM", "受講中のカリキュラムがありません。", "student_id", model.ErrNoActiveCurriculum)
		}
		logger.Error("Failed to find active enrollment", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講情報の取得に失敗しました。", "", err)
	}

	input := model.ReadinessInput{StudentID: studentID, Now: s.now()}

	// 読み取り専用なので進捗行の遅延作成はしない
	current, err := s.repos.Progress.FindActiveByEnrollment(ctx, s.db, enrollment.EnrollmentID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to find current progress", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の取得に失敗しました。", "", err)
	}
	if current != nil {
		input.Progress = current
		input.Plan = current.Plan
	}
	// 直近の新規暗記セッション (プランをまたいで) を判定材料にする
	sessions, err := s.repos.Recitation.ListByStudent(ctx, s.db, studentID, model.SessionFilter{
		RecitationType: model.RecitationMemorization,
		Limit:          s.readinessWindow,
	})
	if err != nil {
		logger.Error("Failed to load recent sessions", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "暗唱履歴の取得に失敗しました。", "", err)
	}
	input.Sessions = sessions

	result, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		logger.Error("Readiness evaluator failed", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "進級判定に失敗しました。", "", err)
	}
	result.StudentID = studentID
	result.CurrentPlan = model.NewPlanDescriptor(input.Plan)
	result.Metrics.WindowSessions = s.readinessWindow

	logger.Info("Progression readiness evaluated", "verdict", result.Verdict, "session_count", result.Metrics.SessionCount)
	return result, nil
}

// --- helpers ---

func (s *trackerService) findStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, db, studentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("STUDENT_NOT_FOUND", "生徒が見つかりません。", "student_id", model.ErrNotFound)
		}
		middleware.GetLogger(ctx).Error("Failed to find student", "error", err, "student_id", studentID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "生徒の取得に失敗しました。", "", err)
	}
	return student, nil
}

// dayBounds は設定タイムゾーンでの当日 [開始, 翌日開始) を返す
func (s *trackerService) dayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}
