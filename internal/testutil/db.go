// Package testutil はテスト用の DB やフィクスチャを提供する
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiscardLogger はテスト出力を汚さないロガー
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSQLiteDB はテストごとに独立したインメモリ SQLite を作り、マイグレーションまで行う
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.NewDB(config.DatabaseConfig{Driver: "sqlite", URL: dsn, AutoMigrate: true}, DiscardLogger())
	require.NoError(t, err, "failed to open sqlite for testing")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// --- フィクスチャ ---

func CreateTeacher(t testing.TB, db *gorm.DB) *model.Teacher {
	t.Helper()
	teacher := &model.Teacher{
		TeacherID: uuid.New(),
		Name:      "Ustadh Test",
		Email:     uuid.NewString() + "@example.com",
		IsActive:  true,
	}
	require.NoError(t, db.Create(teacher).Error)
	return teacher
}

func CreateStudent(t testing.TB, db *gorm.DB, guardianPhone string) *model.Student {
	t.Helper()
	student := &model.Student{
		StudentID:     uuid.New(),
		Name:          "Student " + uuid.NewString()[:8],
		GuardianPhone: guardianPhone,
		IsActive:      true,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

// CreateCurriculum は planTypes の順に sequence = 1, 2, ... のプランを作る
func CreateCurriculum(t testing.TB, db *gorm.DB, planTypes ...model.PlanType) *model.Curriculum {
	t.Helper()
	curriculum := &model.Curriculum{CurriculumID: uuid.New(), Name: "Curriculum " + uuid.NewString()[:8]}
	for i, pt := range planTypes {
		content, err := json.Marshal([]model.VerseRange{{StartSurah: 78, StartVerse: i*5 + 1, EndSurah: 78, EndVerse: i*5 + 5}})
		require.NoError(t, err)
		curriculum.Plans = append(curriculum.Plans, model.CurriculumPlan{
			PlanID:       uuid.New(),
			CurriculumID: curriculum.CurriculumID,
			Sequence:     i + 1,
			PlanType:     pt,
			Content:      datatypes.JSON(content),
			ExpectedDays: 1,
		})
	}
	require.NoError(t, db.Create(curriculum).Error)
	return curriculum
}

// Enroll は進捗行を作らずに受講行だけを作る
func Enroll(t testing.TB, db *gorm.DB, studentID, curriculumID uuid.UUID) *model.CurriculumEnrollment {
	t.Helper()
	enrollment := &model.CurriculumEnrollment{
		EnrollmentID: uuid.New(),
		StudentID:    studentID,
		CurriculumID: curriculumID,
		Status:       model.EnrollmentInProgress,
		Version:      1,
		StartedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Omit("Student", "Curriculum").Create(enrollment).Error)
	return enrollment
}

// ProgressRows は受講の全進捗行を sequence 順に返す
func ProgressRows(t testing.TB, db *gorm.DB, enrollmentID uuid.UUID) []*model.CurriculumProgress {
	t.Helper()
	rows, err := repository.NewGormProgressRepository().ListByEnrollment(context.Background(), db, enrollmentID)
	require.NoError(t, err)
	return rows
}

func CountRows(t testing.TB, db *gorm.DB, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
