package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/ports"
	"leadgate/internal/lead/ratelimit"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/device"
	"leadgate/pkg/platform/privacy"
	"leadgate/pkg/requestcontext"
)

const tracerName = "leadgate/internal/lead/service"

// Store is the record store the pipeline counts against and writes to.
type Store = ports.Store

// Dispatcher schedules a detached notification for a stored record.
type Dispatcher interface {
	Dispatch(ctx context.Context, rec *models.Record)
}

// Service runs the submission pipeline: validate, rate check, persist, notify.
// Each step runs only if the previous one succeeded.
type Service struct {
	store      Store
	limiter    *ratelimit.Limiter
	dispatcher Dispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
	maxPerIP   int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithMaxSubmissionsPerIP overrides ratelimit.DefaultMaxSubmissionsPerIP.
func WithMaxSubmissionsPerIP(n int) Option {
	return func(s *Service) {
		s.maxPerIP = n
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("lead store is required")
	}

	svc := &Service{
		store:    store,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		maxPerIP: ratelimit.DefaultMaxSubmissionsPerIP,
	}
	for _, opt := range opts {
		opt(svc)
	}

	limiter, err := ratelimit.New(store,
		ratelimit.WithMaxPerIP(svc.maxPerIP),
		ratelimit.WithLogger(svc.logger),
	)
	if err != nil {
		return nil, err
	}
	svc.limiter = limiter
	return svc, nil
}

// Submit validates sub, enforces the per-IP cap for the client IP in ctx,
// stores the lead and schedules its notification.
//
// Errors are coded: CodeValidation (with Details), CodeRateLimited or
// CodeInternal. Notification outcome never affects the result.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "lead.Submit")
	defer span.End()

	ip := requestcontext.ClientIP(ctx)
	if ip == "" {
		ip = requestcontext.FallbackClientIP
	}

	normalized, violations := models.Validate(sub)
	if len(violations) > 0 {
		span.SetAttributes(attribute.Int("lead.violations", len(violations)))
		s.logger.InfoContext(ctx, "lead rejected by validation",
			"violations", len(violations),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Validation(violations)
	}
	kind, _ := normalized.Contact()
	span.SetAttributes(attribute.String("lead.contact_kind", kind.String()))

	res, err := s.checkLimit(ctx, ip)
	if err != nil {
		s.fail(ctx, span, err, "lead rate check failed")
		return nil, err
	}
	if !res.Allowed {
		span.SetAttributes(attribute.Bool("lead.rate_limited", true))
		ports.LogAudit(ctx, s.logger, "lead_rate_limited",
			"ip_prefix", privacy.AnonymizeIP(ip),
			"count", res.Count,
			"limit", res.Limit,
		)
		return nil, dErrors.New(dErrors.CodeRateLimited, models.MsgRateLimited)
	}

	rec, err := s.insert(ctx, normalized.WithIP(ip))
	if err != nil {
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal, "failed to save lead")
		s.fail(ctx, span, wrapped, "lead persistence failed")
		return nil, wrapped
	}
	span.SetAttributes(attribute.String("lead.id", rec.ID.String()))

	ua := requestcontext.UserAgent(ctx)
	ports.LogAudit(ctx, s.logger, "lead_accepted",
		"lead_id", rec.ID,
		"contact_kind", kind.String(),
		"ip_prefix", privacy.AnonymizeIP(ip),
		"device", device.Describe(ua),
		"mobile", device.Mobile(ua),
	)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, rec)
	}
	return rec, nil
}

func (s *Service) checkLimit(ctx context.Context, ip string) (*ratelimit.Result, error) {
	ctx, span := s.tracer.Start(ctx, "lead.store.Count")
	defer span.End()
	return s.limiter.Check(ctx, ip)
}

func (s *Service) insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "lead.store.Insert")
	defer span.End()
	rec, err := s.store.Insert(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return rec, err
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// Health reports store connectivity when the store supports it.
func (s *Service) Health(ctx context.Context) error {
	if hc, ok := s.store.(ports.HealthChecker); ok {
		if err := hc.Health(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
		}
	}
	return nil
}
