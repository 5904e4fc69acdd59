package handlers

import (
	"log/slog"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"
)

type StudentHandler struct {
	service service.StudentService
	logger  *slog.Logger
}

func NewStudentHandler(s service.StudentService, logger *slog.Logger) *StudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentHandler{service: s, logger: logger}
}

// PostStudent は生徒を登録する
func (h *StudentHandler) PostStudent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostStudent"))

	var req model.CreateStudentRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	student, err := h.service.CreateStudent(r.Context(), &req)
	if err != nil {
		logger.Warn("Error creating student in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Student created successfully", slog.String("student_id", student.StudentID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, student, logger)
}

// GetStudents は生徒一覧。?active=true で有効な生徒のみ
func (h *StudentHandler) GetStudents(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudents"))

	activeOnly := r.URL.Query().Get("active") == "true"
	students, err := h.service.ListStudents(r.Context(), activeOnly)
	if err != nil {
		logger.Error("Error listing students in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	if students == nil {
		students = []*model.Student{}
	}
	logger.Info("Students listed successfully", slog.Int("count", len(students)))
	webutil.RespondWithJSON(w, http.StatusOK, students, logger)
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudent"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	student, err := h.service.GetStudent(r.Context(), studentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, student, logger)
}

// DeleteStudent は生徒を無効化する (物理削除はしない)
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteStudent"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	if err := h.service.DeactivateStudent(r.Context(), studentID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Student deactivated successfully", slog.String("student_id", studentID.String()))
	w.WriteHeader(http.StatusNoContent)
}
