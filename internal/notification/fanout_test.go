package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	name  string
	send  func(ctx context.Context, record *PaymentRecord) error
	calls atomic.Int32
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Send(ctx context.Context, record *PaymentRecord) error {
	s.calls.Add(1)
	if s.send == nil {
		return nil
	}
	return s.send(ctx, record)
}

type fakeReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *fakeReporter) CaptureException(_ context.Context, err error, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *fakeReporter) captured() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func newFanout(async bool, timeout time.Duration, reporter ErrorReporter, sinks ...Sink) *Fanout {
	cfg := config.GetDefaultConfig()
	cfg.Webhook.AsyncFanout = async
	cfg.Webhook.FanoutTimeout = timeout
	return NewFanout(cfg, sinks, reporter, logger.NewNopLogger())
}

func testRecord() *PaymentRecord {
	return &PaymentRecord{EventID: "evt_1", SessionID: "cs_1", AmountTotal: 2500, Currency: "cad"}
}

func TestFanoutIsolatesSinkFailures(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	failing := &fakeSink{name: "failing", send: func(context.Context, *PaymentRecord) error {
		return errors.New("sheet unavailable")
	}}
	panicking := &fakeSink{name: "panicking", send: func(context.Context, *PaymentRecord) error {
		panic("nil map")
	}}
	reporter := &fakeReporter{}

	f := newFanout(false, time.Second, reporter, failing, panicking, ok)
	f.Notify(context.Background(), testRecord())

	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), panicking.calls.Load())

	captured := reporter.captured()
	require.Len(t, captured, 2)
	for _, err := range captured {
		assert.True(t, ierr.IsSink(err))
	}
}

func TestFanoutTimesOutEachSink(t *testing.T) {
	slow := &fakeSink{name: "slow", send: func(ctx context.Context, _ *PaymentRecord) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	fast := &fakeSink{name: "fast"}
	reporter := &fakeReporter{}

	f := newFanout(false, 20*time.Millisecond, reporter, slow, fast)

	start := time.Now()
	f.Notify(context.Background(), testRecord())
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, int32(1), fast.calls.Load())
	captured := reporter.captured()
	require.Len(t, captured, 1)
	assert.True(t, errors.Is(captured[0], context.DeadlineExceeded))
}

func TestFanoutAsyncDoesNotBlockAndSurvivesCancel(t *testing.T) {
	release := make(chan struct{})
	var sawCancel atomic.Bool
	slow := &fakeSink{name: "slow", send: func(ctx context.Context, _ *PaymentRecord) error {
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return nil
	}}

	f := newFanout(true, time.Second, nil, slow)

	ctx, cancel := context.WithCancel(context.Background())
	f.Notify(ctx, testRecord())
	cancel()
	close(release)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, f.Wait(waitCtx))

	assert.Equal(t, int32(1), slow.calls.Load())
	assert.False(t, sawCancel.Load())
}

func TestFanoutWithoutSinks(t *testing.T) {
	f := newFanout(true, time.Second, nil)
	f.Notify(context.Background(), testRecord())
	assert.NoError(t, f.Wait(context.Background()))
	assert.Empty(t, f.Sinks())
}
