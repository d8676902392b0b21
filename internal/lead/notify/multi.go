package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
)

// Sink is a named notification channel.
type Sink interface {
	Name() string
	Notify(ctx context.Context, rec *models.Record) error
}

// Multi fans a notification out to every sink concurrently. One sink failing
// never prevents delivery to the others.
type Multi struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewMulti builds a fan-out notifier. Nil sinks are skipped.
func NewMulti(logger *slog.Logger, m *metrics.Metrics, sinks ...Sink) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	out := &Multi{logger: logger, metrics: m}
	for _, s := range sinks {
		if s != nil {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

// Len reports how many sinks are wired.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Notify delivers to all sinks and joins their errors. Unconfigured sinks
// are logged as warnings and do not count as failures.
func (m *Multi) Notify(ctx context.Context, rec *models.Record) error {
	errs := make([]error, len(m.sinks))

	var g errgroup.Group
	for i, sink := range m.sinks {
		g.Go(func() error {
			err := sink.Notify(ctx, rec)
			switch {
			case err == nil:
				m.metrics.IncNotification(sink.Name(), metrics.NotifySent)
			case errors.Is(err, sentinel.ErrNotConfigured):
				m.metrics.IncNotification(sink.Name(), metrics.NotifySkipped)
				m.logger.WarnContext(ctx, "notification sink not configured", "sink", sink.Name())
			default:
				m.metrics.IncNotification(sink.Name(), metrics.NotifyFailed)
				errs[i] = fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
