// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // "postgres" or "sqlite"
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	Timezone        string `mapstructure:"timezone"`         // 「今日」の判定に使うタイムゾーン
	ReadinessWindow int    `mapstructure:"readiness_window"` // 進級判定で参照する直近セッション数
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NotifierConfig は通知ゲートウェイへの受け渡し設定
type NotifierConfig struct {
	Type           string `mapstructure:"type"` // "log" or "webhook"
	WebhookURL     string `mapstructure:"webhook_url"`
	WebhookToken   string `mapstructure:"webhook_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryCount     int    `mapstructure:"retry_count"`
}

type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"pool_size"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Auth     AuthConfig     `mapstructure:"auth"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 例: APP_DATABASE_URL, APP_JWT_SECRET_KEY
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("redis.url", "REDIS_URL")
	viper.BindEnv("notifier.webhook_token", "NOTIFIER_WEBHOOK_TOKEN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	applyDefaults(&Cfg)

	// Auth.Enabled は未設定なら有効にする
	if !viper.IsSet("auth.enabled") {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		Cfg.Auth.Enabled = true
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Database Driver: %s", Cfg.Database.Driver)
	log.Printf("Timezone: %s", Cfg.App.Timezone)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)
	log.Printf("Notifier Type: %s", Cfg.Notifier.Type)
	log.Printf("Reminder Enabled: %t (schedule=%q)", Cfg.Reminder.Enabled, Cfg.Reminder.Schedule)

	return nil
}

// applyDefaults は未設定の項目にデフォルト値を入れる
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = DefaultTimezone
	}
	if cfg.App.ReadinessWindow <= 0 {
		log.Printf("App readiness window not set or invalid, using default '%d'", DefaultReadinessWindow)
		cfg.App.ReadinessWindow = DefaultReadinessWindow
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Notifier.Type == "" {
		cfg.Notifier.Type = DefaultNotifierType
	}
	if cfg.Notifier.TimeoutSeconds <= 0 {
		cfg.Notifier.TimeoutSeconds = DefaultNotifierTimeoutSeconds
	}
	if cfg.Notifier.RetryCount < 0 {
		cfg.Notifier.RetryCount = 0
	}
	if cfg.Reminder.Schedule == "" {
		cfg.Reminder.Schedule = DefaultReminderSchedule
	}
	if cfg.Redis.PoolSize <= 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
}
