package handlers

import (
	"log/slog"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"
)

type TeacherHandler struct {
	service service.TeacherService
	logger  *slog.Logger
}

func NewTeacherHandler(s service.TeacherService, logger *slog.Logger) *TeacherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeacherHandler{service: s, logger: logger}
}

// PostTeacher は教師を登録する
func (h *TeacherHandler) PostTeacher(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTeacher"))

	var req model.CreateTeacherRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	teacher, err := h.service.CreateTeacher(r.Context(), &req)
	if err != nil {
		logger.Warn("Error creating teacher in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Teacher created successfully", slog.String("teacher_id", teacher.TeacherID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, teacher, logger)
}

func (h *TeacherHandler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTeacher"))

	teacherID, ok := parseUUIDParam(w, r, logger, "teacher_id")
	if !ok {
		return
	}

	teacher, err := h.service.GetTeacher(r.Context(), teacherID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, teacher, logger)
}
