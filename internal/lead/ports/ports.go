// Package ports defines the collaborators of the lead pipeline.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Store,HealthChecker,Notifier

import (
	"context"
	"log/slog"

	"leadgate/internal/lead/models"
	"leadgate/pkg/requestcontext"
)

// Store is the durable, append-only record of accepted leads.
type Store interface {
	// Count returns how many records were stored for the given origin IP.
	Count(ctx context.Context, ip string) (int, error)

	// Insert persists a submission and returns the stored record.
	Insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error)
}

// HealthChecker is implemented by stores that can report connectivity.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Notifier delivers a one-way alert about an accepted lead.
type Notifier interface {
	Notify(ctx context.Context, rec *models.Record) error
}

// LogAudit logs a security-relevant outcome with the standard audit fields.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}
