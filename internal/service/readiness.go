package service

import (
	"context"
	"math"

	"go_hifz_keep/internal/model"
)

// ReadinessEvaluator は直近の暗唱履歴から進級可否を判定する。
// トラッカーは判定ロジックを持たず、この実装に委ねる。
type ReadinessEvaluator interface {
	Evaluate(ctx context.Context, input model.ReadinessInput) (*model.ReadinessResponse, error)
}

// 連続合格がこの回数以上なら ready
const readyStreak = 2

// 平均評点がこの値以上で合格が1回以上あれば ready
const readyAverageGrade = 8.0

type heuristicReadinessEvaluator struct {
	passingGrade float64
}

func NewHeuristicReadinessEvaluator() ReadinessEvaluator {
	return &heuristicReadinessEvaluator{passingGrade: model.AdvancementGrade}
}

func (e *heuristicReadinessEvaluator) Evaluate(_ context.Context, input model.ReadinessInput) (*model.ReadinessResponse, error) {
	m := model.ReadinessMetrics{PassingGrade: e.passingGrade}

	if input.Plan != nil {
		m.ExpectedDays = input.Plan.ExpectedDays
	}
	if input.Progress != nil && !input.Now.IsZero() {
		m.DaysOnPlan = int(input.Now.Sub(input.Progress.StartedAt).Hours()/24) + 1
		if m.ExpectedDays > 0 && m.DaysOnPlan > m.ExpectedDays {
			m.OverdueByDays = m.DaysOnPlan - m.ExpectedDays
		}
	}

	if len(input.Sessions) == 0 {
		return &model.ReadinessResponse{Verdict: model.ReadinessNoData, Metrics: m}, nil
	}

	var total float64
	streakOpen := true
	for _, sess := range input.Sessions { // 新しい順
		total += sess.Grade
		if sess.Grade > m.BestGrade {
			m.BestGrade = sess.Grade
		}
		if input.Plan != nil && sess.PlanID != nil && *sess.PlanID == input.Plan.PlanID {
			m.AttemptsOnPlan++
		}
		passed := sess.Grade >= e.passingGrade
		if passed {
			m.PassingCount++
		}
		if streakOpen && passed {
			m.PassingStreak++
		} else {
			streakOpen = false
		}
	}
	m.SessionCount = len(input.Sessions)
	m.AverageGrade = math.Round(total/float64(m.SessionCount)*100) / 100

	verdict := model.ReadinessNeedsPractice
	if m.PassingStreak >= readyStreak || (m.AverageGrade >= readyAverageGrade && m.PassingCount > 0) {
		verdict = model.ReadinessReady
	}
	return &model.ReadinessResponse{Verdict: verdict, Metrics: m}, nil
}
