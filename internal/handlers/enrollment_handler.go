package handlers

import (
	"log/slog"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"
)

type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  *slog.Logger
}

func NewEnrollmentHandler(s service.EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentHandler{service: s, logger: logger}
}

// PostEnrollment は生徒をカリキュラムに受講登録する
func (h *EnrollmentHandler) PostEnrollment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEnrollment"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("student_id", studentID.String()))

	var req model.EnrollRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), studentID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Student enrolled successfully", slog.String("enrollment_id", enrollment.EnrollmentID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, enrollment, logger)
}

// GetEnrollment は受講中のカリキュラムと進捗履歴を返す
func (h *EnrollmentHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetEnrollment"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	resp, err := h.service.GetActiveEnrollment(r.Context(), studentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}
