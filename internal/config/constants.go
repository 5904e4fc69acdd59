// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "hifz-keep"
	AppVersion = "0.4.0"
)

// デフォルト設定値
const (
	DefaultServerPort             = ":8080"
	DefaultDatabaseDriver         = "postgres"
	DefaultLogLevel               = "info"
	DefaultTimezone               = "Asia/Riyadh"
	DefaultReadinessWindow        = 5
	DefaultNotifierType           = "log"
	DefaultNotifierTimeoutSeconds = 5
	DefaultReminderSchedule       = "0 6 * * *" // 毎朝6時
	DefaultRedisPoolSize          = 10
)
