// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_hifz_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger はテスト出力を汚さないロガー
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// sendRequest はハンドラにリクエストを送り、ステータスコードを検証してボディを返します。
// Body が string の場合はそのまま送る (不正JSONのテスト用)。
func sendRequest(t *testing.T, handler http.Handler, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req := httptest.NewRequest(details.Method, details.Path, reqBodyReader)
	if details.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, expectedCode, rr.Code, "Status code mismatch, body: %s", rr.Body.String())
	return rr.Body.Bytes()
}

// decodeErrorResponse はエラーレスポンスのボディを読み取ります。
func decodeErrorResponse(t *testing.T, body []byte) model.ErrorDetail {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), "error body: %s", string(body))
	return errResp.Error
}

func float64Ptr(v float64) *float64 { return &v }
