package hikaku

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// Option configures a Harness.
type Option func(*options)

type options struct {
	workers  int
	pin      bool
	log      *logrus.Entry
	metrics  *Metrics
	progress func(done, total int)
}

func defaultOptions() options {
	return options{
		workers: runtime.NumCPU(),
		pin:     true,
		log:     logrus.StandardLogger().WithField("component", "hikaku"),
	}
}

// WithWorkers sets the number of parallel workers. Values below one are
// ignored and the hardware parallelism is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPinning enables or disables pinning each worker thread to its own CPU.
// Pinning is enabled by default where the platform supports it.
func WithPinning(pin bool) Option {
	return func(o *options) {
		o.pin = pin
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithProgress calls fn from the coordinating goroutine each time a
// benchmark result is collected.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}
