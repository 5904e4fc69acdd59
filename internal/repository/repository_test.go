package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testCtx() context.Context {
	return middleware.WithLogger(context.Background(), testutil.DiscardLogger())
}

func newProgress(enrollmentID, planID uuid.UUID) *model.CurriculumProgress {
	return &model.CurriculumProgress{
		ProgressID:   uuid.New(),
		EnrollmentID: enrollmentID,
		PlanID:       planID,
		Status:       model.ProgressInProgress,
		StartedAt:    time.Now().UTC(),
	}
}

func TestProgressRepository_OneActivePerEnrollment(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewGormProgressRepository()
	ctx := testCtx()

	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	first := newProgress(enrollment.EnrollmentID, curriculum.Plans[0].PlanID)
	require.NoError(t, repo.Create(ctx, db, first))

	// in_progress が既にあるので2行目は一意制約違反
	err := repo.Create(ctx, db, newProgress(enrollment.EnrollmentID, curriculum.Plans[1].PlanID))
	assert.ErrorIs(t, err, model.ErrConflict)

	// 完了にすれば次の in_progress を作れる
	require.NoError(t, repo.Complete(ctx, db, first.ProgressID, time.Now().UTC()))
	require.NoError(t, repo.Create(ctx, db, newProgress(enrollment.EnrollmentID, curriculum.Plans[1].PlanID)))

	// 同じ行を二度完了にはできない
	err = repo.Complete(ctx, db, first.ProgressID, time.Now().UTC())
	assert.ErrorIs(t, err, model.ErrConflict)

	active, err := repo.FindActiveByEnrollment(ctx, db, enrollment.EnrollmentID)
	require.NoError(t, err)
	require.NotNil(t, active.Plan)
	assert.Equal(t, 2, active.Plan.Sequence)

	last, err := repo.FindLastCompleted(ctx, db, enrollment.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, first.ProgressID, last.ProgressID)
	assert.Equal(t, 100, last.CompletionPercentage)

	_, err = repo.FindActiveByEnrollment(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEnrollmentRepository_CompareAndUpdate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewGormEnrollmentRepository()
	ctx := testCtx()

	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	require.NoError(t, repo.CompareAndUpdate(ctx, db, enrollment.EnrollmentID, 1, map[string]interface{}{}))

	// 古い version での更新は競合
	err := repo.CompareAndUpdate(ctx, db, enrollment.EnrollmentID, 1, map[string]interface{}{"status": model.EnrollmentCompleted})
	assert.ErrorIs(t, err, model.ErrConflict)

	locked, err := repo.LockActiveByStudent(ctx, db, student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, 2, locked.Version)
	assert.Equal(t, model.EnrollmentInProgress, locked.Status)

	require.NoError(t, repo.CompareAndUpdate(ctx, db, enrollment.EnrollmentID, 2, map[string]interface{}{"status": model.EnrollmentCompleted}))
	_, err = repo.FindActiveByStudent(ctx, db, student.StudentID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEnrollmentRepository_OneActivePerStudent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewGormEnrollmentRepository()
	ctx := testCtx()

	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization)
	first := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	second := &model.CurriculumEnrollment{
		EnrollmentID: uuid.New(),
		StudentID:    student.StudentID,
		CurriculumID: curriculum.CurriculumID,
		Status:       model.EnrollmentInProgress,
		Version:      1,
		StartedAt:    time.Now().UTC(),
	}
	assert.ErrorIs(t, repo.Create(ctx, db, second), model.ErrConflict)

	// 完了済みの受講があっても新しい受講は作れる
	require.NoError(t, repo.CompareAndUpdate(ctx, db, first.EnrollmentID, 1, map[string]interface{}{"status": model.EnrollmentCompleted}))
	require.NoError(t, repo.Create(ctx, db, second))

	active, err := repo.ListActive(ctx, db)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Student)
	assert.Equal(t, student.StudentID, active[0].Student.StudentID)
}

func TestCurriculumRepository_PlanOrdering(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewGormCurriculumRepository()
	ctx := testCtx()

	content, err := json.Marshal([]model.VerseRange{{StartSurah: 1, StartVerse: 1, EndSurah: 1, EndVerse: 7}})
	require.NoError(t, err)
	curriculum := &model.Curriculum{CurriculumID: uuid.New(), Name: "Sparse"}
	// sequence は飛び番で、挿入順も sequence 順ではない
	for _, seq := range []int{40, 10, 30, 20} {
		curriculum.Plans = append(curriculum.Plans, model.CurriculumPlan{
			PlanID:       uuid.New(),
			CurriculumID: curriculum.CurriculumID,
			Sequence:     seq,
			PlanType:     model.PlanTypeMemorization,
			Content:      datatypes.JSON(content),
			ExpectedDays: 1,
		})
	}
	require.NoError(t, repo.Create(ctx, db, curriculum))

	first, err := repo.FindFirstPlan(ctx, db, curriculum.CurriculumID)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Sequence)

	next, err := repo.FindNextPlan(ctx, db, curriculum.CurriculumID, 10)
	require.NoError(t, err)
	assert.Equal(t, 20, next.Sequence)

	_, err = repo.FindNextPlan(ctx, db, curriculum.CurriculumID, 40)
	assert.ErrorIs(t, err, model.ErrNotFound)

	window, err := repo.FindPlanWindow(ctx, db, curriculum.CurriculumID, 20, 3)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, []int{20, 30, 40}, []int{window[0].Sequence, window[1].Sequence, window[2].Sequence})

	window, err = repo.FindPlanWindow(ctx, db, curriculum.CurriculumID, 40, 3)
	require.NoError(t, err)
	assert.Len(t, window, 1)

	found, err := repo.FindByID(ctx, db, curriculum.CurriculumID)
	require.NoError(t, err)
	require.Len(t, found.Plans, 4)
	assert.Equal(t, 10, found.Plans[0].Sequence)
	assert.Equal(t, 40, found.Plans[3].Sequence)

	// 同じ sequence は作れない
	dup := &model.Curriculum{CurriculumID: uuid.New(), Name: "Dup", Plans: []model.CurriculumPlan{
		{PlanID: uuid.New(), Sequence: 1, PlanType: model.PlanTypeMemorization, ExpectedDays: 1},
		{PlanID: uuid.New(), Sequence: 1, PlanType: model.PlanTypeMinorReview, ExpectedDays: 1},
	}}
	assert.ErrorIs(t, repo.Create(ctx, db, dup), model.ErrConflict)
}

func TestRecitationRepository_ListByStudent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewGormRecitationRepository()
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	planID := uuid.New()
	base := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	for i, rt := range []model.RecitationType{model.RecitationMemorization, model.RecitationMinorReview, model.RecitationMemorization} {
		s := &model.RecitationSession{
			SessionID:      uuid.NewString(),
			StudentID:      student.StudentID,
			TeacherID:      teacher.TeacherID,
			RecitationType: rt,
			StartSurah:     78, StartVerse: 1, EndSurah: 78, EndVerse: 5,
			Grade:      float64(5 + i),
			Evaluation: model.EvaluationForGrade(float64(5 + i)),
			Status:     model.SessionCompleted,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if rt == model.RecitationMemorization {
			s.PlanID = &planID
		}
		require.NoError(t, repo.Create(ctx, db, s))
	}

	all, err := repo.ListByStudent(ctx, db, student.StudentID, model.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 7.0, all[0].Grade, "新しい順")

	from := base.Add(30 * time.Minute)
	to := base.Add(2 * time.Hour)
	windowed, err := repo.ListByStudent(ctx, db, student.StudentID, model.SessionFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, model.RecitationMinorReview, windowed[0].RecitationType)

	byPlan, err := repo.ListByStudent(ctx, db, student.StudentID, model.SessionFilter{PlanID: &planID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byPlan, 1)
	assert.Equal(t, 7.0, byPlan[0].Grade)

	_, err = repo.FindBySessionID(ctx, db, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
