package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StepSummary reports one scheduler step's outcome, the Go analogue of
// the teacher's WorkGroupSummary.
type StepSummary struct {
	StepName string
	Duration time.Duration
	Err      error
}

// MetricsSink records step outcomes as real Prometheus instruments,
// replacing the teacher's hand-rolled PrometheusWorkGroupCollector
// text formatter.
type MetricsSink struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewMetricsSink registers its instruments against reg.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ecs",
			Subsystem: "scheduler",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of one scheduler step's executor.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecs",
			Subsystem: "scheduler",
			Name:      "steps_total",
			Help:      "Count of scheduler steps run, labeled by outcome.",
		}, []string{"step", "outcome"}),
	}
	reg.MustRegister(s.duration, s.total)
	return s
}

// StepsCounterFor exposes the counter for one step/outcome pair, for
// tests to assert against with prometheus/client_golang/testutil.
func (s *MetricsSink) StepsCounterFor(stepName, outcome string) prometheus.Counter {
	return s.total.WithLabelValues(stepName, outcome)
}

// ObserveStep records one step's duration and outcome.
func (s *MetricsSink) ObserveStep(summary StepSummary) {
	s.duration.WithLabelValues(summary.StepName).Observe(summary.Duration.Seconds())
	outcome := "success"
	if summary.Err != nil {
		outcome = "error"
	}
	s.total.WithLabelValues(summary.StepName, outcome).Inc()
}
