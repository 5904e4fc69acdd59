package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics はカリキュラム進捗とHTTPの計測値。
// nil レシーバでも安全に呼べるので、テストでは nil を渡してよい。
type Metrics struct {
	RecitationsRecorded   *prometheus.CounterVec
	Advancements          prometheus.Counter
	CurriculumCompletions prometheus.Counter
	ProgressConflicts     prometheus.Counter
	NotificationsSent     *prometheus.CounterVec
	RemindersSent         prometheus.Counter
	HTTPRequestDuration   *prometheus.HistogramVec
}

// New は reg に全メトリクスを登録して返す
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecitationsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hifz_recitations_recorded_total",
			Help: "Total number of recitation sessions recorded, by recitation type",
		}, []string{"recitation_type"}),
		Advancements: factory.NewCounter(prometheus.CounterOpts{
			Name: "hifz_progress_advancements_total",
			Help: "Total number of times a progress pointer moved to the next plan",
		}),
		CurriculumCompletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "hifz_curriculum_completions_total",
			Help: "Total number of enrollments that reached the completed state",
		}),
		ProgressConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "hifz_progress_conflicts_total",
			Help: "Total number of rejected concurrent advancement attempts",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hifz_notifications_total",
			Help: "Notification hand-offs to the gateway, by event type and result",
		}, []string{"event_type", "result"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "hifz_daily_reminders_sent_total",
			Help: "Total number of daily reminders handed to the notifier",
		}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hifz_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),
	}
}

// IncrementRecitationRecorded records a committed recitation session.
func (m *Metrics) IncrementRecitationRecorded(recitationType string) {
	if m == nil {
		return
	}
	m.RecitationsRecorded.WithLabelValues(recitationType).Inc()
}

func (m *Metrics) IncrementAdvancement() {
	if m == nil {
		return
	}
	m.Advancements.Inc()
}

func (m *Metrics) IncrementCurriculumCompletion() {
	if m == nil {
		return
	}
	m.CurriculumCompletions.Inc()
}

func (m *Metrics) IncrementProgressConflict() {
	if m == nil {
		return
	}
	m.ProgressConflicts.Inc()
}

// IncrementNotification records a notifier hand-off; result is "ok" or "error".
func (m *Metrics) IncrementNotification(eventType, result string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) IncrementReminderSent() {
	if m == nil {
		return
	}
	m.RemindersSent.Inc()
}

// ObserveHTTPRequest records the duration of one request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveHTTPRequest(route, method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
}
