package handlers

import (
	"log/slog"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"
)

type CurriculumHandler struct {
	service service.CurriculumService
	logger  *slog.Logger
}

func NewCurriculumHandler(s service.CurriculumService, logger *slog.Logger) *CurriculumHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CurriculumHandler{service: s, logger: logger}
}

// PostCurriculum はカリキュラムをプランごと作成する
func (h *CurriculumHandler) PostCurriculum(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCurriculum"))

	var req model.CreateCurriculumRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	curriculum, err := h.service.CreateCurriculum(r.Context(), &req)
	if err != nil {
		logger.Warn("Error creating curriculum in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Curriculum created successfully",
		slog.String("curriculum_id", curriculum.CurriculumID.String()),
		slog.Int("plans", len(curriculum.Plans)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, curriculum, logger)
}

func (h *CurriculumHandler) GetCurricula(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCurricula"))

	curricula, err := h.service.ListCurricula(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if curricula == nil {
		curricula = []*model.Curriculum{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, curricula, logger)
}

func (h *CurriculumHandler) GetCurriculum(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCurriculum"))

	curriculumID, ok := parseUUIDParam(w, r, logger, "curriculum_id")
	if !ok {
		return
	}

	curriculum, err := h.service.GetCurriculum(r.Context(), curriculumID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, curriculum, logger)
}
