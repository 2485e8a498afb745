package hikaku

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hikaku"

// Metrics holds prometheus collectors describing harness runs.
type Metrics struct {
	runs        *prometheus.CounterVec
	tasks       prometheus.Counter
	samples     prometheus.Counter
	runDuration prometheus.Histogram
	overhead    prometheus.Histogram
}

// NewMetrics creates the run collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Number of query runs by outcome.",
		}, []string{"outcome"}),
		tasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "benchmarks_total",
			Help:      "Number of benchmark functions executed.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_total",
			Help:      "Number of timing samples collected.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of query runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		overhead: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "timer_overhead_cycles",
			Help:      "Calibrated timestamp overhead per worker.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
	}
	reg.MustRegister(m.runs, m.tasks, m.samples, m.runDuration, m.overhead)
	return m
}

func (m *Metrics) observeRun(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeTask(samples int) {
	if m == nil {
		return
	}
	m.tasks.Inc()
	m.samples.Add(float64(samples))
}

func (m *Metrics) observeOverhead(cycles uint64) {
	if m == nil {
		return
	}
	m.overhead.Observe(float64(cycles))
}
