package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes pipeline and job counters on /metrics. It implements the
// pipeline MetricsRecorder contract.
type Metrics struct {
	windowDuration *prometheus.HistogramVec
	windowsTotal   *prometheus.CounterVec
	tokensTotal    *prometheus.CounterVec
	jobsTotal      *prometheus.CounterVec
}

// New registers the meeting-notes collectors on the given registerer. Pass
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		windowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meetingnotes",
			Name:      "window_analysis_duration_seconds",
			Help:      "Wall-clock duration of one window analysis call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"result"}),
		windowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingnotes",
			Name:      "windows_analyzed_total",
			Help:      "Number of analyzed windows by result",
		}, []string{"result"}),
		tokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingnotes",
			Name:      "model_tokens_total",
			Help:      "Model tokens consumed by direction",
		}, []string{"direction"}),
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingnotes",
			Name:      "analysis_jobs_total",
			Help:      "Analysis jobs by terminal status",
		}, []string{"status"}),
	}
}

// ObserveWindow records one window analysis call
func (m *Metrics) ObserveWindow(duration time.Duration, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.windowDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.windowsTotal.WithLabelValues(result).Inc()
}

// AddTokens records model token usage
func (m *Metrics) AddTokens(inputTokens, outputTokens int64) {
	m.tokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	m.tokensTotal.WithLabelValues("output").Add(float64(outputTokens))
}

// JobFinished records a job reaching a terminal status
func (m *Metrics) JobFinished(status string) {
	m.jobsTotal.WithLabelValues(status).Inc()
}
