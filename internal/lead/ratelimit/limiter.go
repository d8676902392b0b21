// Package ratelimit caps accepted submissions per origin IP.
//
// The limiter keeps no state of its own: every Check re-counts stored records
// for the IP. Two concurrent requests from one IP can both observe a count
// below the threshold and both be accepted, so the cap can be exceeded by the
// degree of concurrency.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"

	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/privacy"
)

// DefaultMaxSubmissionsPerIP is the policy threshold: an IP with this many
// stored submissions is refused.
const DefaultMaxSubmissionsPerIP = 5

// Counter is the slice of the store the limiter needs.
type Counter interface {
	Count(ctx context.Context, ip string) (int, error)
}

// Result is the outcome of a Check.
type Result struct {
	Allowed bool
	Count   int
	Limit   int
}

type Limiter struct {
	counter Counter
	max     int
	logger  *slog.Logger
}

type Option func(*Limiter)

func WithMaxPerIP(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.max = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func New(counter Counter, opts ...Option) (*Limiter, error) {
	if counter == nil {
		return nil, fmt.Errorf("submission counter is required")
	}
	l := &Limiter{
		counter: counter,
		max:     DefaultMaxSubmissionsPerIP,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Limit returns the configured threshold.
func (l *Limiter) Limit() int {
	return l.max
}

// Check denies the IP once it has Limit() or more stored submissions.
func (l *Limiter) Check(ctx context.Context, ip string) (*Result, error) {
	count, err := l.counter.Count(ctx, ip)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count submissions")
	}

	res := &Result{
		Allowed: count < l.max,
		Count:   count,
		Limit:   l.max,
	}
	if !res.Allowed && l.logger != nil {
		l.logger.DebugContext(ctx, "submission limit reached",
			"ip_prefix", privacy.AnonymizeIP(ip),
			"count", count,
			"limit", l.max,
		)
	}
	return res, nil
}
