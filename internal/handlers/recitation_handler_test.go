package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go_hifz_keep/internal/handlers"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/service/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRecitationRouter(m *mocks.RecitationService) *chi.Mux {
	h := handlers.NewRecitationHandler(m, testLogger())
	r := chi.NewRouter()
	r.Get("/students/{student_id}/recitations", h.GetStudentRecitations)
	r.Get("/recitation-sessions/{session_id}", h.GetRecitationSession)
	r.Patch("/recitation-sessions/{session_id}", h.PatchRecitationSession)
	r.Delete("/recitation-sessions/{session_id}", h.DeleteRecitationSession)
	r.Post("/recitation-sessions/{session_id}/errors", h.PostRecitationErrors)
	return r
}

func TestRecitationHandler_GetStudentRecitations(t *testing.T) {
	studentID := uuid.New()
	base := "/students/" + studentID.String() + "/recitations"

	tests := []struct {
		name           string
		query          string
		setupMock      func(m *mocks.RecitationService)
		expectedStatus int
		expectedField  string
	}{
		{
			name:  "正常系: 日付のみの to は翌日0時 (排他的) になる",
			query: "?from=2025-03-01&to=2025-03-02&type=memorization&limit=10",
			setupMock: func(m *mocks.RecitationService) {
				m.On("ListSessions", mock.Anything, studentID, mock.MatchedBy(func(f model.SessionFilter) bool {
					return f.From != nil && f.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) &&
						f.To != nil && f.To.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) &&
						f.RecitationType == model.RecitationMemorization &&
						f.Limit == 10
				})).Return([]*model.RecitationSession{{SessionID: "RS-1"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "正常系: RFC3339 もそのまま受け付ける",
			query: "?from=2025-03-01T05:00:00Z",
			setupMock: func(m *mocks.RecitationService) {
				m.On("ListSessions", mock.Anything, studentID, mock.MatchedBy(func(f model.SessionFilter) bool {
					return f.From != nil && f.From.Equal(time.Date(2025, 3, 1, 5, 0, 0, 0, time.UTC)) && f.To == nil
				})).Return(nil, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "異常系: from の形式が不正",
			query:          "?from=yesterday",
			setupMock:      func(m *mocks.RecitationService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "from",
		},
		{
			name:           "異常系: limit が数値でない",
			query:          "?limit=abc",
			setupMock:      func(m *mocks.RecitationService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "limit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mocks.NewRecitationService(t)
			tc.setupMock(m)
			body := sendRequest(t, newRecitationRouter(m), httpRequestDetails{Method: http.MethodGet, Path: base + tc.query}, tc.expectedStatus)
			if tc.expectedField != "" {
				assert.Equal(t, tc.expectedField, decodeErrorResponse(t, body).Field)
			}
		})
	}
}

func TestRecitationHandler_PatchRecitationSession(t *testing.T) {
	m := mocks.NewRecitationService(t)
	router := newRecitationRouter(m)

	m.On("CorrectSession", mock.Anything, "RS-1", mock.MatchedBy(func(req *model.PatchRecitationRequest) bool {
		return req.Grade != nil && *req.Grade == 6.5 && req.Status == nil
	})).Return(&model.RecitationSession{SessionID: "RS-1", Grade: 6.5, Evaluation: model.EvaluationAcceptable}, nil).Once()

	body := sendRequest(t, router, httpRequestDetails{
		Method: http.MethodPatch,
		Path:   "/recitation-sessions/RS-1",
		Body:   map[string]interface{}{"grade": 6.5},
	}, http.StatusOK)

	var session model.RecitationSession
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, 6.5, session.Grade)
	assert.Equal(t, model.EvaluationAcceptable, session.Evaluation)
}

func TestRecitationHandler_DeleteRecitationSession(t *testing.T) {
	m := mocks.NewRecitationService(t)
	router := newRecitationRouter(m)

	m.On("DeleteSession", mock.Anything, "RS-1").Return(nil).Once()
	sendRequest(t, router, httpRequestDetails{Method: http.MethodDelete, Path: "/recitation-sessions/RS-1"}, http.StatusNoContent)

	m.On("DeleteSession", mock.Anything, "RS-404").
		Return(model.NewAppError("SESSION_NOT_FOUND", "暗唱セッションが見つかりません。", "session_id", model.ErrNotFound)).Once()
	body := sendRequest(t, router, httpRequestDetails{Method: http.MethodDelete, Path: "/recitation-sessions/RS-404"}, http.StatusNotFound)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeErrorResponse(t, body).Code)
}

func TestRecitationHandler_PostRecitationErrors(t *testing.T) {
	m := mocks.NewRecitationService(t)
	router := newRecitationRouter(m)

	m.On("AddErrors", mock.Anything, "RS-1", mock.MatchedBy(func(req *model.AddRecitationErrorsRequest) bool {
		return len(req.Errors) == 1 && req.Errors[0].ErrorType == model.ErrorTypeTajweed
	})).Return(&model.RecitationSession{SessionID: "RS-1", HasErrors: true}, nil).Once()

	body := sendRequest(t, router, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/recitation-sessions/RS-1/errors",
		Body: map[string]interface{}{
			"errors": []map[string]interface{}{
				{"surah": 2, "verse": 3, "error_type": "tajweed", "severity": "minor"},
			},
		},
	}, http.StatusCreated)

	var session model.RecitationSession
	require.NoError(t, json.Unmarshal(body, &session))
	assert.True(t, session.HasErrors)
}
