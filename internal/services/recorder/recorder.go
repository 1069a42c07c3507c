// Package recorder fans a fortune record out to every configured sink.
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

// DefaultTimeout bounds a whole fan-out.
const DefaultTimeout = 10 * time.Second

var sinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "golf_fortune_sink_failures_total",
	Help: "Failed record writes by sink.",
}, []string{"sink"})

// Sink persists or delivers a record.
type Sink interface {
	Name() string
	Save(ctx context.Context, record *models.FortuneRecord) error
}

// SinkError ties a failure to the sink that produced it.
type SinkError struct {
	Sink string
	Err  error
}

func (e SinkError) Error() string {
	return e.Sink + ": " + e.Err.Error()
}

func (e SinkError) Unwrap() error {
	return e.Err
}

// Recorder writes records to its sinks concurrently.
type Recorder struct {
	sinks   []Sink
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a recorder. Nil sinks are ignored.
func New(sinks ...Sink) *Recorder {
	r := &Recorder{
		timeout: DefaultTimeout,
		logger:  utils.Named("recorder"),
	}
	for _, s := range sinks {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
	return r
}

// WithTimeout sets the fan-out deadline. Zero disables it.
func (r *Recorder) WithTimeout(d time.Duration) *Recorder {
	r.timeout = d
	return r
}

// Without returns a recorder with the same timeout minus the named sinks.
func (r *Recorder) Without(names ...string) *Recorder {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}

	out := &Recorder{timeout: r.timeout, logger: r.logger}
	for _, s := range r.sinks {
		if !skip[s.Name()] {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

// Sinks returns the configured sink names.
func (r *Recorder) Sinks() []string {
	names := make([]string, 0, len(r.sinks))
	for _, s := range r.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Record saves record to every sink and returns the failures.
// One sink failing never stops the others.
func (r *Recorder) Record(ctx context.Context, record *models.FortuneRecord) []SinkError {
	if len(r.sinks) == 0 {
		return nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		failures []SinkError
	)

	var g errgroup.Group
	for _, sink := range r.sinks {
		g.Go(func() error {
			if err := sink.Save(ctx, record); err != nil {
				sinkFailures.WithLabelValues(sink.Name()).Inc()
				r.logger.Error("Failed to record fortune",
					utils.RequestID(record.RequestID),
					zap.String("sink", sink.Name()),
					zap.Error(err),
				)

				mu.Lock()
				failures = append(failures, SinkError{Sink: sink.Name(), Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failures
}
