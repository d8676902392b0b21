// Package notify delivers best-effort alerts about accepted leads.
//
// Delivery is detached from the request: the handler hands a record to the
// Dispatcher and responds without waiting. Failures are logged and counted,
// never returned to the caller.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/models"
	"leadgate/internal/lead/ports"
	"leadgate/pkg/requestcontext"
)

// DefaultTimeout bounds one detached delivery.
const DefaultTimeout = 10 * time.Second

// ErrClosed is returned by Close when called twice and logged when a
// dispatch arrives after shutdown started.
var ErrClosed = errors.New("dispatcher closed")

// Dispatcher runs notifications on their own goroutines and tracks them so
// shutdown can wait for in-flight deliveries.
type Dispatcher struct {
	notifier ports.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher wraps notifier. A nil notifier makes Dispatch a no-op.
func NewDispatcher(notifier ports.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		logger:   slog.Default(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules delivery of rec and returns immediately. The task keeps
// ctx's values but not its cancellation, so a finished request never aborts it.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *models.Record) {
	if d.notifier == nil || rec == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.WarnContext(ctx, "notification dropped",
			"error", ErrClosed,
			"lead_id", rec.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	d.metrics.NotificationStarted()
	taskCtx := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		defer d.metrics.NotificationFinished()
		d.deliver(taskCtx, rec)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, rec *models.Record) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "notification panicked",
				"panic", r,
				"lead_id", rec.ID,
			)
		}
	}()

	if err := d.notifier.Notify(ctx, rec); err != nil {
		d.logger.ErrorContext(ctx, "lead notification failed",
			"error", err,
			"lead_id", rec.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	d.logger.DebugContext(ctx, "lead notification delivered",
		"lead_id", rec.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// Close stops accepting new work and waits for in-flight deliveries, or for
// ctx to end, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
