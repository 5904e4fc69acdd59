package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRecitationRecorded("memorization")
		m.IncrementAdvancement()
		m.IncrementCurriculumCompletion()
		m.IncrementProgressConflict()
		m.IncrementNotification("daily_reminder", "ok")
		m.IncrementReminderSent()
		m.ObserveHTTPRequest("/health", "GET", "200", time.Now())
	})
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementRecitationRecorded("memorization")
	m.IncrementRecitationRecorded("memorization")
	m.IncrementRecitationRecorded("minor_review")
	m.IncrementAdvancement()
	m.IncrementProgressConflict()
	m.ObserveHTTPRequest("/api/v1/students/{student_id}/daily-curriculum", "GET", "200", time.Now().Add(-20*time.Millisecond))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecitationsRecorded.WithLabelValues("memorization")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecitationsRecorded.WithLabelValues("minor_review")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Advancements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProgressConflicts))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CurriculumCompletions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))

	// 同じ Registry に二重登録はできない
	require.Panics(t, func() { New(reg) })
}
