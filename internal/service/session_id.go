package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID は数値の主キーとは独立した外部参照用のセッションIDを作る。
// 形式: RS-<yyyyMMddHHmmss>-<uuid v4 の16進32桁>
func NewSessionID(now time.Time) string {
	return "RS-" + now.UTC().Format("20060102150405") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
