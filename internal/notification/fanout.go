package notification

import (
	"context"
	"sync"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Sink receives settled payments
type Sink interface {
	Name() string
	Send(ctx context.Context, record *PaymentRecord) error
}

// Notifier is what webhook handlers call once a payment settles
type Notifier interface {
	Notify(ctx context.Context, record *PaymentRecord)
}

// ErrorReporter receives sink failures, e.g. Sentry
type ErrorReporter interface {
	CaptureException(ctx context.Context, err error, tags map[string]string)
}

// Fanout delivers a record to every sink independently. A failing or slow
// sink never affects the others, and no error ever reaches the caller.
type Fanout struct {
	sinks    []Sink
	async    bool
	timeout  time.Duration
	reporter ErrorReporter
	logger   *logger.Logger

	// detached deliveries still running, drained on shutdown
	inflight sync.WaitGroup
}

// NewFanout creates a fan-out over sinks using the webhook settings in cfg
func NewFanout(cfg *config.Configuration, sinks []Sink, reporter ErrorReporter, logger *logger.Logger) *Fanout {
	return &Fanout{
		sinks:    sinks,
		async:    cfg.Webhook.AsyncFanout,
		timeout:  cfg.Webhook.FanoutTimeout,
		reporter: reporter,
		logger:   logger,
	}
}

// Sinks returns the names of the registered sinks
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Notify sends record to every sink. In async mode it returns immediately and
// the deliveries outlive ctx's cancellation.
func (f *Fanout) Notify(ctx context.Context, record *PaymentRecord) {
	if len(f.sinks) == 0 {
		f.logger.Warnw("no notification sinks configured, payment not recorded",
			"event_id", record.EventID,
			"session_id", record.SessionID,
		)
		return
	}

	if !f.async {
		f.deliver(ctx, record)
		return
	}

	detached := context.WithoutCancel(ctx)
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		f.deliver(detached, record)
	}()
}

// Wait blocks until detached deliveries finish or ctx is done
func (f *Fanout) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fanout) deliver(ctx context.Context, record *PaymentRecord) {
	wg := conc.NewWaitGroup()
	for _, sink := range f.sinks {
		wg.Go(func() {
			f.send(ctx, sink, record)
		})
	}
	wg.Wait()
}

func (f *Fanout) send(ctx context.Context, sink Sink, record *PaymentRecord) {
	sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = sink.Send(sendCtx, record)
	})
	if recovered := pc.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err == nil {
		f.logger.Infow("payment recorded",
			"sink", sink.Name(),
			"event_id", record.EventID,
			"session_id", record.SessionID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	sinkErr := ierr.WithError(err).
		WithHintf("Notification sink %s failed", sink.Name()).
		WithReportableDetails(map[string]any{
			"sink":       sink.Name(),
			"event_id":   record.EventID,
			"session_id": record.SessionID,
		}).
		Mark(ierr.ErrSink)

	f.logger.Errorw("notification sink failed",
		"sink", sink.Name(),
		"event_id", record.EventID,
		"session_id", record.SessionID,
		"error", sinkErr,
	)

	if f.reporter != nil {
		f.reporter.CaptureException(ctx, sinkErr, map[string]string{
			"sink":     sink.Name(),
			"event_id": record.EventID,
		})
	}
}
