// internal/middleware/logger.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go_hifz_keep/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware" // chiのミドルウェアヘルパーを使う
)

// NewMetricsMiddleware はルートパターン単位でレイテンシを記録するミドルウェア。
// パス上のIDでラベルが増えないよう、URLではなく chi のルートパターンを使う。
func NewMetricsMiddleware(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()

			defer func() {
				route := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						route = pattern
					}
				}
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				m.ObserveHTTPRequest(route, r.Method, strconv.Itoa(status), t1)
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
