package handlers

import (
	"log/slog"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service"
	"go_hifz_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type RecitationHandler struct {
	service service.RecitationService
	logger  *slog.Logger
}

func NewRecitationHandler(s service.RecitationService, logger *slog.Logger) *RecitationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecitationHandler{service: s, logger: logger}
}

// GetStudentRecitations は生徒の暗唱記録一覧 (新しい順)。
// クエリ: from, to (RFC3339 または YYYY-MM-DD), type, limit
func (h *RecitationHandler) GetStudentRecitations(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudentRecitations"))

	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	q := r.URL.Query()
	from, err := parseTimeQuery(q.Get("from"), false)
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_QUERY_PARAM", "fromの形式が正しくありません。", "from", model.ErrInvalidInput))
		return
	}
	to, err := parseTimeQuery(q.Get("to"), true)
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_QUERY_PARAM", "toの形式が正しくありません。", "to", model.ErrInvalidInput))
		return
	}
	limit, err := parseLimitQuery(q.Get("limit"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_QUERY_PARAM", "limitの形式が正しくありません。", "limit", model.ErrInvalidInput))
		return
	}

	filter := model.SessionFilter{
		From:           from,
		To:             to,
		RecitationType: model.RecitationType(q.Get("type")),
		Limit:          limit,
	}
	sessions, err := h.service.ListSessions(r.Context(), studentID, filter)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if sessions == nil {
		sessions = []*model.RecitationSession{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, sessions, logger)
}

func (h *RecitationHandler) GetRecitationSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetRecitationSession"))

	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session, logger)
}

// PatchRecitationSession は記録の訂正。進捗は動かない
func (h *RecitationHandler) PatchRecitationSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchRecitationSession"))
	sessionID := chi.URLParam(r, "session_id")

	var req model.PatchRecitationRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	session, err := h.service.CorrectSession(r.Context(), sessionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Recitation session corrected successfully", slog.String("session_id", sessionID))
	webutil.RespondWithJSON(w, http.StatusOK, session, logger)
}

func (h *RecitationHandler) DeleteRecitationSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteRecitationSession"))
	sessionID := chi.URLParam(r, "session_id")

	if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Recitation session deleted successfully", slog.String("session_id", sessionID))
	w.WriteHeader(http.StatusNoContent)
}

// PostRecitationErrors はセッションに誤りを追加する
func (h *RecitationHandler) PostRecitationErrors(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostRecitationErrors"))
	sessionID := chi.URLParam(r, "session_id")

	var req model.AddRecitationErrorsRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	session, err := h.service.AddErrors(r.Context(), sessionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Recitation errors added successfully", slog.String("session_id", sessionID), slog.Int("count", len(req.Errors)))
	webutil.RespondWithJSON(w, http.StatusCreated, session, logger)
}
