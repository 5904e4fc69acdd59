// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"net/http"

	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/webutil"

	"github.com/google/uuid"
)

// DevTeacherContextMiddleware は開発時用ミドルウェアです (auth.enabled=false)。
// X-Teacher-ID ヘッダーからUUIDを抽出し、コンテキストに設定します。
// 教師の存在チェックはトラッカー側で行います。
func DevTeacherContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		teacherIDStr := r.Header.Get("X-Teacher-ID")
		if teacherIDStr == "" {
			logger.Warn("[DEV AUTH] Failed: X-Teacher-ID header missing")
			appErr := model.NewAppError("UNAUTHORIZED", "[DEV] X-Teacher-IDヘッダーが必要です。", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
			return
		}

		teacherID, err := uuid.Parse(teacherIDStr)
		if err != nil {
			logger.Warn("[DEV AUTH] Failed: Invalid X-Teacher-ID format", "value", teacherIDStr)
			appErr := model.NewAppError("UNAUTHORIZED", "[DEV] X-Teacher-IDの形式が正しくありません。", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
			return
		}

		logger.Debug("[DEV AUTH] Teacher ID set to context (no validation)", "teacher_id", teacherID)

		ctx := context.WithValue(r.Context(), model.TeacherIDKey, teacherID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
