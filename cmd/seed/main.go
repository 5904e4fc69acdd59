// cmd/seed/main.go
// デモ用の教師・生徒・カリキュラム (ジュズ・アンマの一部) を投入し、受講登録まで行う。
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/service"
)

func main() {
	configDir := os.Getenv("APP_CONFIG_DIR")
	if configDir == "" {
		configDir = "../configs"
	}
	if err := config.LoadConfig(configDir); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := middleware.WithLogger(context.Background(), logger)

	// seed はスキーマが無ければ作る
	dbCfg := config.Cfg.Database
	dbCfg.AutoMigrate = true
	db, err := repository.NewDB(dbCfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	repos := repository.NewGormRepositories()
	teachers := service.NewTeacherService(db, repos.Teacher)
	students := service.NewStudentService(db, repos.Student)
	curricula := service.NewCurriculumService(db, repos.Curriculum)
	enrollments := service.NewEnrollmentService(db, repos)

	teacher, err := teachers.CreateTeacher(ctx, &model.CreateTeacherRequest{
		Name:  "Ustadh Ahmad",
		Email: fmt.Sprintf("ahmad+%d@example.com", os.Getpid()),
	})
	if err != nil {
		log.Fatalf("Failed to create teacher: %v", err)
	}

	student, err := students.CreateStudent(ctx, &model.CreateStudentRequest{
		Name:          "Yusuf",
		GuardianPhone: "+966500000000",
	})
	if err != nil {
		log.Fatalf("Failed to create student: %v", err)
	}

	curriculum, err := curricula.CreateCurriculum(ctx, demoCurriculum())
	if err != nil {
		log.Fatalf("Failed to create curriculum: %v", err)
	}

	enrollment, err := enrollments.Enroll(ctx, student.StudentID, &model.EnrollRequest{CurriculumID: curriculum.CurriculumID.String()})
	if err != nil {
		log.Fatalf("Failed to enroll student: %v", err)
	}

	fmt.Println("Seed completed.")
	fmt.Printf("  teacher_id    = %s\n", teacher.TeacherID)
	fmt.Printf("  student_id    = %s\n", student.StudentID)
	fmt.Printf("  curriculum_id = %s (%d plans)\n", curriculum.CurriculumID, len(curriculum.Plans))
	fmt.Printf("  enrollment_id = %s\n", enrollment.EnrollmentID)
	fmt.Println("Try: curl -H 'X-Teacher-ID: " + teacher.TeacherID.String() + "' localhost:8080/api/v1/students/" + student.StudentID.String() + "/daily-curriculum")
}

// demoCurriculum は 暗記 -> 小復習 -> 大復習 の3つ組を並べたカリキュラム
func demoCurriculum() *model.CreateCurriculumRequest {
	days := []struct {
		surah    int
		from, to int
	}{
		{surah: 78, from: 1, to: 10},
		{surah: 78, from: 11, to: 20},
		{surah: 78, from: 21, to: 30},
		{surah: 78, from: 31, to: 40},
	}

	req := &model.CreateCurriculumRequest{
		Name:        "Juz Amma (An-Naba)",
		Description: "Daily memorization with same-day minor review and cumulative major review",
	}
	seq := 1
	for _, d := range days {
		req.Plans = append(req.Plans,
			model.CreatePlanRequest{
				Sequence: seq, PlanType: model.PlanTypeMemorization, ExpectedDays: 1,
				Content: []model.VerseRange{{StartSurah: d.surah, StartVerse: d.from, EndSurah: d.surah, EndVerse: d.to}},
			},
			model.CreatePlanRequest{
				Sequence: seq + 1, PlanType: model.PlanTypeMinorReview, ExpectedDays: 1,
				Content: []model.VerseRange{{StartSurah: d.surah, StartVerse: d.from, EndSurah: d.surah, EndVerse: d.to}},
			},
			model.CreatePlanRequest{
				Sequence: seq + 2, PlanType: model.PlanTypeMajorReview, ExpectedDays: 1,
				Content: []model.VerseRange{{StartSurah: d.surah, StartVerse: 1, EndSurah: d.surah, EndVerse: d.to}},
			},
		)
		seq += 3
	}
	return req
}
