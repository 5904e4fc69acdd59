package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/metrics"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/model"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/testutil"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testCtx() context.Context {
	return middleware.WithLogger(context.Background(), testutil.DiscardLogger())
}

func newTestTracker(t *testing.T, db *gorm.DB, repos *repository.Repositories, m *metrics.Metrics) *trackerService {
	t.Helper()
	if repos == nil {
		repos = repository.NewGormRepositories()
	}
	cfg := &config.Config{App: config.AppConfig{Timezone: "UTC", ReadinessWindow: 5}}
	svc, ok := NewTrackerService(db, repos, nil, cfg, m).(*trackerService)
	require.True(t, ok)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func recitationInput(studentID, teacherID uuid.UUID, rt model.RecitationType, grade float64) *model.RecordRecitationInput {
	return &model.RecordRecitationInput{
		StudentID:      studentID,
		TeacherID:      teacherID,
		RecitationType: rt,
		Range:          model.VerseRange{StartSurah: 78, StartVerse: 1, EndSurah: 78, EndVerse: 5},
		Grade:          grade,
	}
}

func requireAppErrorCode(t *testing.T, err error, code string) *model.AppError {
	t.Helper()
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Detail.Code)
	return appErr
}

func activeProgressCount(t *testing.T, db *gorm.DB, enrollmentID uuid.UUID) int64 {
	t.Helper()
	return testutil.CountRows(t, db, &model.CurriculumProgress{}, "enrollment_id = ? AND status = ?", enrollmentID, model.ProgressInProgress)
}

// 4プランのカリキュラムで、初回表示から1回の進級までを通しで確認する
func TestTrackerService_DailyFlowScenario(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := newTestTracker(t, db, nil, m)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "+966500000001")
	curriculum := testutil.CreateCurriculum(t, db,
		model.PlanTypeMemorization, model.PlanTypeMinorReview, model.PlanTypeMajorReview, model.PlanTypeMemorization)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	// 初回: P1 の進捗行が遅延作成され、P1..P3 が順序通りに並ぶ
	daily, err := svc.GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)
	require.NotNil(t, daily.CurrentPlan)
	assert.Equal(t, 1, daily.CurrentPlan.Sequence)
	require.Len(t, daily.Plans, 3)
	assert.Equal(t, 1, daily.Memorization.Sequence)
	assert.Equal(t, 2, daily.MinorReview.Sequence)
	assert.Equal(t, 3, daily.MajorReview.Sequence)
	assert.Empty(t, daily.Warnings)
	assert.Equal(t, "2025-03-10", daily.Date)
	assert.Empty(t, daily.CompletedSlots)

	// 復習は評点が高くても進まない
	resp, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMinorReview, 10))
	require.NoError(t, err)
	assert.False(t, resp.Advanced)

	// 新規暗記 9 点で P2 へ進む
	resp, err = svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9))
	require.NoError(t, err)
	assert.True(t, resp.Advanced)
	require.NotNil(t, resp.NextPlan)
	assert.Equal(t, 2, resp.NextPlan.Sequence)
	assert.False(t, resp.CurriculumCompleted)
	assert.Equal(t, model.EvaluationExcellent, resp.Evaluation)

	rows := testutil.ProgressRows(t, db, enrollment.EnrollmentID)
	require.Len(t, rows, 2)
	assert.Equal(t, model.ProgressCompleted, rows[0].Status)
	assert.Equal(t, 100, rows[0].CompletionPercentage)
	assert.NotNil(t, rows[0].CompletedAt)
	assert.Equal(t, model.ProgressInProgress, rows[1].Status)

	// P2 起点のウィンドウは P2(小), P3(大), P4(暗記) で全位置が周期とずれる
	daily, err = svc.GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, 2, daily.CurrentPlan.Sequence)
	require.Len(t, daily.Plans, 3)
	assert.Len(t, daily.Warnings, 3)
	assert.Equal(t, 4, daily.Memorization.Sequence)
	assert.Equal(t, 2, daily.MinorReview.Sequence)
	assert.Equal(t, 3, daily.MajorReview.Sequence)
	assert.Equal(t, model.PlanTypeMinorReview, daily.Plans[0].Slot)
	assert.Equal(t, model.PlanTypeMemorization, daily.Plans[0].ExpectedSlot)

	// 当日のセッションは種別ごとにまとまる
	assert.ElementsMatch(t, []model.RecitationType{model.RecitationMinorReview, model.RecitationMemorization}, daily.CompletedSlots)
	require.Len(t, daily.TodaySessions[model.RecitationMemorization], 1)
	assert.True(t, daily.TodaySessions[model.RecitationMemorization][0].Advanced)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Advancements))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.RecitationsRecorded.WithLabelValues("memorization")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.RecitationsRecorded.WithLabelValues("minor_review")))
}

func TestTrackerService_AdvancementRule(t *testing.T) {
	tests := []struct {
		name           string
		recitationType model.RecitationType
		grade          float64
		wantAdvanced   bool
		wantEvaluation model.Evaluation
	}{
		{"正常系: 新規暗記 7 点ちょうどで進む", model.RecitationMemorization, 7, true, model.EvaluationGood},
		{"正常系: 新規暗記 10 点で進む", model.RecitationMemorization, 10, true, model.EvaluationExcellent},
		{"正常系: 新規暗記 6.9 点では進まない", model.RecitationMemorization, 6.9, false, model.EvaluationAcceptable},
		{"正常系: 新規暗記 0 点では進まない", model.RecitationMemorization, 0, false, model.EvaluationWeak},
		{"正常系: 小復習は 10 点でも進まない", model.RecitationMinorReview, 10, false, model.EvaluationExcellent},
		{"正常系: 大復習は 10 点でも進まない", model.RecitationMajorReview, 10, false, model.EvaluationExcellent},
		{"正常系: 定着は 10 点でも進まない", model.RecitationConsolidation, 10, false, model.EvaluationExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			svc := newTestTracker(t, db, nil, nil)
			ctx := testCtx()

			teacher := testutil.CreateTeacher(t, db)
			student := testutil.CreateStudent(t, db, "")
			curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview)
			enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

			resp, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, tt.recitationType, tt.grade))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdvanced, resp.Advanced)
			assert.Equal(t, tt.wantEvaluation, resp.Evaluation)

			// 進まなかった場合も遅延作成された P1 の行が残る
			rows := testutil.ProgressRows(t, db, enrollment.EnrollmentID)
			if tt.wantAdvanced {
				require.Len(t, rows, 2)
				assert.Equal(t, 2, rows[1].Plan.Sequence)
			} else {
				require.Len(t, rows, 1)
				assert.Equal(t, model.ProgressInProgress, rows[0].Status)
			}

			var session model.RecitationSession
			require.NoError(t, db.Where("session_id = ?", resp.SessionID).First(&session).Error)
			assert.Equal(t, tt.wantAdvanced, session.Advanced)
			require.NotNil(t, session.PlanID)
			assert.Equal(t, curriculum.Plans[0].PlanID, *session.PlanID)
		})
	}
}

func TestTrackerService_CompletesCurriculumOnLastPlan(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := newTestTracker(t, db, nil, m)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMemorization)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	resp, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 8))
	require.NoError(t, err)
	require.True(t, resp.Advanced)
	assert.False(t, resp.CurriculumCompleted)

	resp, err = svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 8))
	require.NoError(t, err)
	assert.True(t, resp.Advanced)
	assert.True(t, resp.CurriculumCompleted)
	assert.Nil(t, resp.NextPlan)

	var stored model.CurriculumEnrollment
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.EnrollmentID).First(&stored).Error)
	assert.Equal(t, model.EnrollmentCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, int64(0), activeProgressCount(t, db, enrollment.EnrollmentID))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CurriculumCompletions))

	// 完了後の記録は受講なしとして保存され、ポインタには触れない
	resp, err = svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 10))
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
	assert.Len(t, testutil.ProgressRows(t, db, enrollment.EnrollmentID), 2)

	_, err = svc.GetDailyCurriculum(ctx, student.StudentID)
	requireAppErrorCode(t, err, "NO_ACTIVE_CURRICULUM")
	assert.ErrorIs(t, err, model.ErrNoActiveCurriculum)
}

func TestTrackerService_GetDailyCurriculum_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview, model.PlanTypeMajorReview)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	first, err := svc.GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)
	second, err := svc.GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentPlan, second.CurrentPlan)
	assert.Equal(t, first.Plans, second.Plans)
	assert.Len(t, testutil.ProgressRows(t, db, enrollment.EnrollmentID), 1)

	// 同時に呼ばれても進捗行は1行だけ
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetDailyCurriculum(ctx, student.StudentID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, testutil.ProgressRows(t, db, enrollment.EnrollmentID), 1)
}

func TestTrackerService_AtMostOneActiveProgress(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db,
		model.PlanTypeMemorization, model.PlanTypeMinorReview, model.PlanTypeMajorReview)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	sequence := []struct {
		rt    model.RecitationType
		grade float64
	}{
		{model.RecitationMinorReview, 9},
		{model.RecitationMemorization, 5},
		{model.RecitationMemorization, 7.5},
		{model.RecitationMajorReview, 2},
		{model.RecitationConsolidation, 8},
	}
	for _, step := range sequence {
		_, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, step.rt, step.grade))
		require.NoError(t, err)
		assert.LessOrEqual(t, activeProgressCount(t, db, enrollment.EnrollmentID), int64(1))
	}

	// 残り2プランに対して6件の合格記録を同時に送る。進むのはちょうど2件
	var wg sync.WaitGroup
	results := make(chan *model.RecordRecitationResponse, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9))
			if assert.NoError(t, err) {
				results <- resp
			}
		}()
	}
	wg.Wait()
	close(results)

	advanced := 0
	completed := 0
	for resp := range results {
		if resp.Advanced {
			advanced++
		}
		if resp.CurriculumCompleted {
			completed++
		}
	}
	assert.Equal(t, 2, advanced)
	assert.Equal(t, 1, completed)
	assert.Equal(t, int64(0), activeProgressCount(t, db, enrollment.EnrollmentID))
	assert.Len(t, testutil.ProgressRows(t, db, enrollment.EnrollmentID), 3)
}

// failingProgressRepository は指定した書き込みで失敗する
type failingProgressRepository struct {
	repository.ProgressRepository
	failComplete bool
	failCreate   bool
}

var errInjected = errors.New("injected failure")

func (r *failingProgressRepository) Complete(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, completedAt time.Time) error {
	if r.failComplete {
		return errInjected
	}
	return r.ProgressRepository.Complete(ctx, tx, progressID, completedAt)
}

func (r *failingProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.CurriculumProgress) error {
	if r.failCreate {
		return errInjected
	}
	return r.ProgressRepository.Create(ctx, tx, progress)
}

func TestTrackerService_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name         string
		failComplete bool
		failCreate   bool
	}{
		{"異常系: 現在のプランの完了に失敗", true, false},
		{"異常系: 次のプランの進捗作成に失敗", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			ctx := testCtx()

			teacher := testutil.CreateTeacher(t, db)
			student := testutil.CreateStudent(t, db, "")
			curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview)
			enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

			// 先に P1 の進捗行を確定させておく
			_, err := newTestTracker(t, db, nil, nil).GetDailyCurriculum(ctx, student.StudentID)
			require.NoError(t, err)

			repos := repository.NewGormRepositories()
			repos.Progress = &failingProgressRepository{
				ProgressRepository: repos.Progress,
				failComplete:       tt.failComplete,
				failCreate:         tt.failCreate,
			}
			svc := newTestTracker(t, db, repos, nil)

			_, err = svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9))
			requireAppErrorCode(t, err, "INTERNAL_SERVER_ERROR")
			assert.ErrorIs(t, err, errInjected)

			assert.Equal(t, int64(0), testutil.CountRows(t, db, &model.RecitationSession{}, ""))
			rows := testutil.ProgressRows(t, db, enrollment.EnrollmentID)
			require.Len(t, rows, 1)
			assert.Equal(t, model.ProgressInProgress, rows[0].Status)
			assert.Equal(t, curriculum.Plans[0].PlanID, rows[0].PlanID)

			var stored model.CurriculumEnrollment
			require.NoError(t, db.Where("enrollment_id = ?", enrollment.EnrollmentID).First(&stored).Error)
			assert.Equal(t, 1, stored.Version)
		})
	}
}

// staleEnrollmentRepository は別のリクエストが先に進めた後の古い受講行を返す
type staleEnrollmentRepository struct {
	repository.EnrollmentRepository
}

func (r staleEnrollmentRepository) LockActiveByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*model.CurriculumEnrollment, error) {
	enrollment, err := r.EnrollmentRepository.LockActiveByStudent(ctx, tx, studentID)
	if enrollment != nil {
		enrollment.Version--
	}
	return enrollment, err
}

func TestTrackerService_DetectsConcurrentAdvancement(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := testCtx()
	m := metrics.New(prometheus.NewRegistry())

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	_, err := newTestTracker(t, db, nil, nil).GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)

	repos := repository.NewGormRepositories()
	repos.Enrollment = staleEnrollmentRepository{EnrollmentRepository: repos.Enrollment}
	svc := newTestTracker(t, db, repos, m)

	_, err = svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9))
	requireAppErrorCode(t, err, "PROGRESS_CONFLICT")
	assert.ErrorIs(t, err, model.ErrConflict)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.ProgressConflicts))

	// セッションも完了も残らない
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &model.RecitationSession{}, ""))
	rows := testutil.ProgressRows(t, db, enrollment.EnrollmentID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ProgressInProgress, rows[0].Status)
}

func TestTrackerService_RecordRecitation_Validation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization)
	testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	tests := []struct {
		name      string
		modify    func(in *model.RecordRecitationInput)
		wantField string
	}{
		{"異常系: 評点が範囲外 (85)", func(in *model.RecordRecitationInput) { in.Grade = 85 }, "grade"},
		{"異常系: 評点が負", func(in *model.RecordRecitationInput) { in.Grade = -1 }, "grade"},
		{"異常系: 未知の暗唱種別", func(in *model.RecordRecitationInput) { in.RecitationType = "tilawa" }, "recitation_type"},
		{"異常系: スーラ番号が範囲外", func(in *model.RecordRecitationInput) { in.Range.StartSurah = 115 }, "start_surah"},
		{"異常系: 節番号が0", func(in *model.RecordRecitationInput) { in.Range.StartVerse = 0 }, "start_verse"},
		{"異常系: 同じスーラ内で節が逆順", func(in *model.RecordRecitationInput) {
			in.Range = model.VerseRange{StartSurah: 78, StartVerse: 10, EndSurah: 78, EndVerse: 3}
		}, "end_verse"},
		{"異常系: 評価ラベルが不正", func(in *model.RecordRecitationInput) { in.Evaluation = "perfect" }, "evaluation"},
		{"異常系: 生徒IDが空", func(in *model.RecordRecitationInput) { in.StudentID = uuid.Nil }, "student_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9)
			tt.modify(in)

			_, err := svc.RecordRecitationAndAdvance(ctx, in)
			appErr := requireAppErrorCode(t, err, "VALIDATION_ERROR")
			assert.Equal(t, tt.wantField, appErr.Detail.Field)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	// 検証エラーでは何も保存されない
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &model.RecitationSession{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &model.CurriculumProgress{}, ""))

	t.Run("正常系: スーラをまたぐ逆順の範囲は許可", func(t *testing.T) {
		in := recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMajorReview, 8)
		in.Range = model.VerseRange{StartSurah: 114, StartVerse: 1, EndSurah: 78, EndVerse: 40}
		_, err := svc.RecordRecitationAndAdvance(ctx, in)
		require.NoError(t, err)
	})

	t.Run("異常系: 入力が nil", func(t *testing.T) {
		_, err := svc.RecordRecitationAndAdvance(ctx, nil)
		requireAppErrorCode(t, err, "INVALID_REQUEST_BODY")
	})
}

func TestTrackerService_RecordRecitation_References(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	inactive := testutil.CreateStudent(t, db, "")
	require.NoError(t, db.Model(&model.Student{}).Where("student_id = ?", inactive.StudentID).Update("is_active", false).Error)
	active := testutil.CreateStudent(t, db, "")

	tests := []struct {
		name     string
		input    *model.RecordRecitationInput
		wantCode string
		wantErr  error
	}{
		{
			name:     "異常系: 評価者が教師ではない",
			input:    recitationInput(active.StudentID, uuid.New(), model.RecitationMemorization, 9),
			wantCode: "TEACHER_NOT_FOUND",
			wantErr:  model.ErrInvalidInput,
		},
		{
			name:     "異常系: 生徒が存在しない",
			input:    recitationInput(uuid.New(), teacher.TeacherID, model.RecitationMemorization, 9),
			wantCode: "STUDENT_NOT_FOUND",
			wantErr:  model.ErrNotFound,
		},
		{
			name:     "異常系: 無効化された生徒",
			input:    recitationInput(inactive.StudentID, teacher.TeacherID, model.RecitationMemorization, 9),
			wantCode: "STUDENT_INACTIVE",
			wantErr:  model.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordRecitationAndAdvance(ctx, tt.input)
			requireAppErrorCode(t, err, tt.wantCode)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &model.RecitationSession{}, ""))
}

func TestTrackerService_RecordRecitation_WithoutEnrollment(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")

	in := recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 10)
	in.MarkCompleted = true
	in.Notes = "تجويد ممتاز"
	resp, err := svc.RecordRecitationAndAdvance(ctx, in)
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
	assert.Nil(t, resp.NextPlan)

	var session model.RecitationSession
	require.NoError(t, db.Where("session_id = ?", resp.SessionID).First(&session).Error)
	assert.Nil(t, session.EnrollmentID)
	assert.Nil(t, session.PlanID)
	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.Equal(t, "تجويد ممتاز", session.TeacherNotes)
	assert.Equal(t, fixedNow, session.RecordedAt.UTC())

	_, err = svc.GetDailyCurriculum(ctx, student.StudentID)
	requireAppErrorCode(t, err, "NO_ACTIVE_CURRICULUM")
}

func TestTrackerService_GetDailyCurriculum_Errors(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	t.Run("異常系: 生徒が存在しない", func(t *testing.T) {
		_, err := svc.GetDailyCurriculum(ctx, uuid.New())
		requireAppErrorCode(t, err, "STUDENT_NOT_FOUND")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: プランのないカリキュラム", func(t *testing.T) {
		student := testutil.CreateStudent(t, db, "")
		curriculum := testutil.CreateCurriculum(t, db)
		testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

		_, err := svc.GetDailyCurriculum(ctx, student.StudentID)
		requireAppErrorCode(t, err, "CURRICULUM_EMPTY")
	})

	t.Run("正常系: 最後のプランより先はウィンドウが短くなる", func(t *testing.T) {
		student := testutil.CreateStudent(t, db, "")
		curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization)
		testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

		daily, err := svc.GetDailyCurriculum(ctx, student.StudentID)
		require.NoError(t, err)
		require.Len(t, daily.Plans, 1)
		assert.NotNil(t, daily.Memorization)
		assert.Nil(t, daily.MinorReview)
		assert.Nil(t, daily.MajorReview)
	})
}

func TestTrackerService_TodaySessionsUseConfiguredTimezone(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{App: config.AppConfig{Timezone: "Asia/Riyadh"}}
	svc := NewTrackerService(db, repository.NewGormRepositories(), nil, cfg, nil).(*trackerService)
	// リヤドでは 3/11 01:30
	now := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMinorReview, model.PlanTypeMajorReview)
	testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	// リヤドで前日 23:00 のセッションは当日分に入らない
	yesterday := &model.RecitationSession{
		SessionID:      NewSessionID(now),
		StudentID:      student.StudentID,
		TeacherID:      teacher.TeacherID,
		RecitationType: model.RecitationMajorReview,
		StartSurah:     78, StartVerse: 1, EndSurah: 78, EndVerse: 5,
		Grade:      6,
		Evaluation: model.EvaluationAcceptable,
		Status:     model.SessionCompleted,
		RecordedAt: time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(yesterday).Error)

	_, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMinorReview, 8))
	require.NoError(t, err)

	daily, err := svc.GetDailyCurriculum(ctx, student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", daily.Date)
	assert.Equal(t, []model.RecitationType{model.RecitationMinorReview}, daily.CompletedSlots)
	assert.NotContains(t, daily.TodaySessions, model.RecitationMajorReview)
}

func TestTrackerService_EvaluateProgressionReadiness(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newTestTracker(t, db, nil, nil)
	ctx := testCtx()

	teacher := testutil.CreateTeacher(t, db)
	student := testutil.CreateStudent(t, db, "")
	curriculum := testutil.CreateCurriculum(t, db, model.PlanTypeMemorization, model.PlanTypeMemorization, model.PlanTypeMemorization)
	enrollment := testutil.Enroll(t, db, student.StudentID, curriculum.CurriculumID)

	t.Run("正常系: 記録がなければ no_data で進捗行も作らない", func(t *testing.T) {
		result, err := svc.EvaluateProgressionReadiness(ctx, student.StudentID)
		require.NoError(t, err)
		assert.Equal(t, model.ReadinessNoData, result.Verdict)
		assert.Equal(t, student.StudentID, result.StudentID)
		assert.Nil(t, result.CurrentPlan)
		assert.Equal(t, 5, result.Metrics.WindowSessions)
		assert.Empty(t, testutil.ProgressRows(t, db, enrollment.EnrollmentID))
	})

	t.Run("正常系: 不合格が続けば needs_practice", func(t *testing.T) {
		for _, g := range []float64{4, 5.5} {
			_, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, g))
			require.NoError(t, err)
		}
		result, err := svc.EvaluateProgressionReadiness(ctx, student.StudentID)
		require.NoError(t, err)
		assert.Equal(t, model.ReadinessNeedsPractice, result.Verdict)
		require.NotNil(t, result.CurrentPlan)
		assert.Equal(t, 1, result.CurrentPlan.Sequence)
		assert.Equal(t, 2, result.Metrics.SessionCount)
		assert.Equal(t, 2, result.Metrics.AttemptsOnPlan)
		assert.Equal(t, 0, result.Metrics.PassingStreak)
	})

	t.Run("正常系: プランをまたいだ連続合格で ready", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := svc.RecordRecitationAndAdvance(ctx, recitationInput(student.StudentID, teacher.TeacherID, model.RecitationMemorization, 9))
			require.NoError(t, err)
		}
		result, err := svc.EvaluateProgressionReadiness(ctx, student.StudentID)
		require.NoError(t, err)
		assert.Equal(t, model.ReadinessReady, result.Verdict)
		assert.Equal(t, 3, result.CurrentPlan.Sequence)
		assert.Equal(t, 2, result.Metrics.PassingStreak)
		assert.Equal(t, 0, result.Metrics.AttemptsOnPlan)
		assert.Equal(t, 4, result.Metrics.SessionCount)
	})

	t.Run("異常系: 受講なし", func(t *testing.T) {
		other := testutil.CreateStudent(t, db, "")
		_, err := svc.EvaluateProgressionReadiness(ctx, other.StudentID)
		requireAppErrorCode(t, err, "NO_ACTIVE_CURRICULUM")
	})

	t.Run("異常系: 生徒が存在しない", func(t *testing.T) {
		_, err := svc.EvaluateProgressionReadiness(ctx, uuid.New())
		requireAppErrorCode(t, err, "STUDENT_NOT_FOUND")
	})
}
