package repository

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/model"

	slogGorm "github.com/orandin/slog-gorm" // slogGormはエイリアス
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB は設定のドライバに応じて GORM の接続を作る
func NewDB(cfg config.DatabaseConfig, appLogger *slog.Logger) (*gorm.DB, error) {
	// === slog を利用する GORM Logger の設定 ===
	var gormLogLevel gormlogger.LogLevel
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		gormLogLevel = gormlogger.Info
	} else {
		gormLogLevel = gormlogger.Warn
	}

	slogGormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		// 開発用。行ロックは効かないため、競合はバージョン番号で検出する
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: slogGormLogger.LogMode(gormLogLevel),
		// ユニーク制約違反を gorm.ErrDuplicatedKey に変換する
		TranslateError: true,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.Any("error", err), slog.String("driver", cfg.Driver))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	if strings.ToLower(cfg.Driver) == "sqlite" {
		sqlDB.SetMaxOpenConns(1) // SQLite は書き込みが直列
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	appLogger.Info("Database connection established with GORM", slog.String("driver", cfg.Driver))

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			appLogger.Error("Failed to auto migrate", slog.Any("error", err))
			return nil, err
		}
		appLogger.Info("Database schema migrated")
	}

	return db, nil
}

// AutoMigrate は全テーブルを作成・更新する (テストでも使う)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Student{},
		&model.Teacher{},
		&model.Curriculum{},
		&model.CurriculumPlan{},
		&model.CurriculumEnrollment{},
		&model.CurriculumProgress{},
		&model.RecitationSession{},
		&model.RecitationError{},
	)
}
