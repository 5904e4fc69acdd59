package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
)

// TrackerHandler はカリキュラム進捗トラッカーの HTTP 入口
type TrackerHandler struct {
	tracker  service.TrackerService
	students service.StudentService
	notifier service.Notifier
	logger   *slog.Logger
}

func NewTrackerHandler(tracker service.TrackerService, students service.StudentService, notifier service.Notifier, logger *slog.Logger) *TrackerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackerHandler{
		tracker:  tracker,
		students: students,
		notifier: notifier,
		logger:   logger,
	}
}

// GetDailyCurriculum は生徒の「今日の課題」を返す
func (h *TrackerHandler) GetDailyCurriculum(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDailyCurriculum"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("student_id", studentID.String()))

	resp, err := h.tracker.GetDailyCurriculum(r.Context(), studentID)
	if err != nil {
		logger.Warn("Error building daily curriculum", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// PostRecitation は暗唱を記録し、条件を満たせば進捗を進める。
// 評価者は認証済みの教師。
func (h *TrackerHandler) PostRecitation(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostRecitation"))

	teacherID, ok := requireTeacher(w, r, logger)
	if !ok {
		return
	}
	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("teacher_id", teacherID.String()), slog.String("student_id", studentID.String()))

	var req model.RecordRecitationRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}
	if err := webutil.ValidateStruct(&req); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	input := &model.RecordRecitationInput{
		StudentID:      studentID,
		TeacherID:      teacherID,
		RecitationType: req.RecitationType,
		Range:          req.VerseRange,
		Grade:          *req.Grade,
		Evaluation:     req.Evaluation,
		Notes:          req.Notes,
		MarkCompleted:  req.MarkCompleted,
	}
	resp, err := h.tracker.RecordRecitationAndAdvance(r.Context(), input)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	h.notifyRecorded(r.Context(), logger, studentID, input, resp)

	logger.Info("Recitation recorded successfully",
		slog.String("session_id", resp.SessionID),
		slog.Bool("advanced", resp.Advanced),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// notifyRecorded は保護者向けの通知を渡す。失敗しても記録結果には影響させない
func (h *TrackerHandler) notifyRecorded(ctx context.Context, logger *slog.Logger, studentID uuid.UUID, input *model.RecordRecitationInput, resp *model.RecordRecitationResponse) {
	if h.notifier == nil || h.students == nil {
		return
	}
	student, err := h.students.GetStudent(ctx, studentID)
	if err != nil {
		logger.Warn("Skipping notification, student lookup failed", slog.Any("error", err))
		return
	}
	if student.GuardianPhone == "" {
		return
	}

	event := model.NotificationEvent{
		Type:       model.EventRecitationRecorded,
		StudentID:  studentID,
		Recipient:  student.GuardianPhone,
		OccurredAt: time.Now().UTC(),
		Data: map[string]any{
			"student_name":         student.Name,
			"session_id":           resp.SessionID,
			"recitation_type":      input.RecitationType,
			"grade":                input.Grade,
			"evaluation":           resp.Evaluation,
			"advanced":             resp.Advanced,
			"curriculum_completed": resp.CurriculumCompleted,
			"next_plan":            resp.NextPlan,
		},
	}
	if err := h.notifier.Notify(ctx, event); err != nil {
		logger.Warn("Failed to hand recitation notification to notifier", slog.Any("error", err))
	}
}

// GetProgressionReadiness は進級可否の判定を返す (読み取りのみ)
func (h *TrackerHandler) GetProgressionReadiness(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetProgressionReadiness"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	resp, err := h.tracker.EvaluateProgressionReadiness(r.Context(), studentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}
