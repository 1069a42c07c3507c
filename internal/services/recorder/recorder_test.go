package recorder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"golf-fortune-engine/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSink struct {
	name  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Save(ctx context.Context, _ *models.FortuneRecord) error {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestRecord_AllSinksCalled(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	r := New(a, nil, b)

	failures := r.Record(context.Background(), &models.FortuneRecord{RequestID: "req"})
	assert.Empty(t, failures)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
	assert.Equal(t, []string{"a", "b"}, r.Sinks())
}

func TestWithout(t *testing.T) {
	a := &fakeSink{name: "filestore"}
	b := &fakeSink{name: "postgres"}
	r := New(a, b).WithTimeout(time.Second)

	trimmed := r.Without("postgres")
	assert.Equal(t, []string{"filestore"}, trimmed.Sinks())
	assert.Equal(t, []string{"filestore", "postgres"}, r.Sinks())

	trimmed.Record(context.Background(), &models.FortuneRecord{RequestID: "req"})
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Zero(t, b.calls.Load())
}

func TestRecord_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("disk full")
	bad := &fakeSink{name: "bad-sink", err: boom}
	good := &fakeSink{name: "good"}
	r := New(bad, good)

	before := testutil.ToFloat64(sinkFailures.WithLabelValues("bad-sink"))
	failures := r.Record(context.Background(), &models.FortuneRecord{RequestID: "req"})

	require.Len(t, failures, 1)
	assert.Equal(t, "bad-sink", failures[0].Sink)
	assert.ErrorIs(t, failures[0], boom)
	assert.Equal(t, int32(1), good.calls.Load())
	assert.Equal(t, before+1, testutil.ToFloat64(sinkFailures.WithLabelValues("bad-sink")))
}

func TestRecord_Timeout(t *testing.T) {
	slow := &fakeSink{name: "slow", delay: time.Second}
	r := New(slow).WithTimeout(20 * time.Millisecond)

	failures := r.Record(context.Background(), &models.FortuneRecord{RequestID: "req"})
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], context.DeadlineExceeded)
}

func TestRecord_NoSinks(t *testing.T) {
	assert.Nil(t, New().Record(context.Background(), &models.FortuneRecord{}))
}
