package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/models"
	"leadgate/internal/platform/middleware"
	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
)

// Service defines the interface for lead submission.
type Service interface {
	Submit(ctx context.Context, sub models.Submission) (*models.Record, error)
}

// Handler serves the lead capture endpoint.
type Handler struct {
	logger  *slog.Logger
	leads   Service
	metrics *metrics.Metrics
}

// New creates a new lead Handler. metrics may be nil.
func New(leads Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		leads:   leads,
		metrics: metrics,
	}
}

// Register mounts the submission endpoint on / and /contact. Every method is
// routed here so non-POST requests get the plain 405 body.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS)
		r.HandleFunc("/", h.handleSubmit)
		r.HandleFunc("/contact", h.handleSubmit)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WritePlain(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	defer h.metrics.ObserveSubmissionDuration(start)

	sub, err := models.DecodeSubmission(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "malformed lead submission",
			"request_id", requestID,
			"error", err.Error(),
		)
		h.metrics.IncSubmission(metrics.OutcomeMalformed)
		h.writeError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed body"))
		return
	}

	rec, err := h.leads.Submit(ctx, sub)
	if err != nil {
		h.metrics.IncSubmission(outcomeFor(err))
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to submit lead",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		h.writeError(w, err)
		return
	}

	h.metrics.IncSubmission(metrics.OutcomeAccepted)
	h.logger.InfoContext(ctx, "lead submitted",
		"request_id", requestID,
		"lead_id", rec.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, models.SubmitResponse{
		Success: true,
		Message: models.MsgAccepted,
	})
}

// writeError translates coded errors to responses. Only validation details
// and fixed messages are ever written.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	switch code {
	case dErrors.CodeValidation:
		httputil.WriteJSON(w, status, models.ValidationErrorResponse{
			Success: false,
			Errors:  dErrors.Details(err),
		})
	case dErrors.CodeRateLimited:
		httputil.WriteJSON(w, status, models.SubmitResponse{
			Success: false,
			Message: models.MsgRateLimited,
		})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, models.SubmitResponse{
			Success: false,
			Message: models.MsgInternal,
		})
	}
}

func outcomeFor(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation:
		return metrics.OutcomeInvalid
	case dErrors.CodeRateLimited:
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}
