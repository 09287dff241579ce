// Package api implements the HTTP surface of the contact relay: the send
// endpoint and the read-only diagnostics endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/shineum/contact-relay/internal/config"
	"github.com/shineum/contact-relay/internal/contact"
	"github.com/shineum/contact-relay/internal/metrics"
	"github.com/shineum/contact-relay/internal/provider"
)

const (
	msgNotConfigured = "Email service not configured"
	msgUnauthorized  = "Unauthorized domain"
	msgSendFailed    = "Failed to send email"
	msgSent          = "Email sent successfully"
)

// Handler serves the relay endpoints. It holds no mutable state; cfg and
// provider are shared read-only by all requests.
type Handler struct {
	cfg      *config.Config
	provider provider.Provider
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil logger uses slog.Default().
func NewHandler(cfg *config.Config, p provider.Provider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, provider: p, logger: logger}
}

// SendEmail handles POST /send-email. Every failure, including a panic
// raised while handling, is answered here and never escapes the handler.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		log.Error("panic while handling submission", "panic", rec)
		metrics.ObserveSubmission(metrics.OutcomeFailed, h.providerName())
		h.writeFailure(w, fmt.Sprint(rec), fmt.Sprintf("%T", rec))
	}()

	if !h.cfg.Ready() || h.provider == nil {
		log.Error("send rejected: provider not configured",
			"provider", h.cfg.Provider,
			"missing", h.cfg.MissingSettings(),
		)
		metrics.ObserveSubmission(metrics.OutcomeNotReady, h.providerName())
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   msgNotConfigured,
			Details: notConfiguredDetails(h.cfg),
		})
		return
	}

	origin, referer := r.Header.Get("Origin"), r.Header.Get("Referer")
	if !OriginAllowed(h.cfg.HTTP.AllowedOrigins, origin, referer) {
		log.Warn("send rejected: origin not allowed", "origin", origin, "referer", referer)
		metrics.ObserveSubmission(metrics.OutcomeUnauthorized, h.providerName())
		writeError(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	if r.Body != nil && h.cfg.HTTP.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.HTTP.MaxBodyBytes)
	}

	sub, err := contact.Decode(r.Body)
	if err != nil {
		var ve *contact.ValidationError
		if errors.As(err, &ve) {
			log.Info("send rejected: invalid submission", "field", ve.Field, "reason", ve.Message)
			metrics.ObserveSubmission(metrics.OutcomeInvalid, h.providerName())
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		h.writeFailure(w, err.Error(), fmt.Sprintf("%T", err))
		return
	}

	msg, err := contact.Compose(contact.Envelope{
		From:    h.cfg.Mail.From,
		To:      h.cfg.Mail.To,
		Subject: h.cfg.Mail.Subject,
	}, sub)
	if err != nil {
		h.writeFailure(w, err.Error(), fmt.Sprintf("%T", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.HTTP.SendTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := h.provider.Send(ctx, msg)
	metrics.ObserveDelivery(h.provider.Name(), time.Since(start))

	if err != nil {
		details, typ := deliveryFailure(err)
		log.Error("email delivery failed",
			"provider", h.provider.Name(),
			"error", err,
			"type", typ,
			"duration", time.Since(start),
		)
		metrics.ObserveSubmission(metrics.OutcomeFailed, h.provider.Name())
		h.writeFailure(w, details, typ)
		return
	}

	log.Info("email sent",
		"provider", h.provider.Name(),
		"email_id", receipt.ID,
		"duration", time.Since(start),
	)
	metrics.ObserveSubmission(metrics.OutcomeSent, h.provider.Name())
	writeJSON(w, http.StatusOK, sendResponse{
		Success: true,
		Message: msgSent,
		EmailID: receipt.ID,
	})
}

// writeFailure answers 500. Details and type are only included when the
// configuration allows exposing them to clients.
func (h *Handler) writeFailure(w http.ResponseWriter, details, typ string) {
	resp := errorResponse{Error: msgSendFailed}
	if h.cfg.HTTP.ExposeErrorDetails {
		resp.Details = details
		resp.Type = typ
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *Handler) providerName() string {
	if h.provider == nil {
		return h.cfg.Provider
	}
	return h.provider.Name()
}

// deliveryFailure returns the client-facing detail text and type name for
// a send error. Deadline expiry is reported as a timeout.
func deliveryFailure(err error) (details, typ string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "email provider did not respond in time: " + err.Error(), "timeout"
	}
	var de *provider.DeliveryError
	if errors.As(err, &de) {
		return de.Err.Error(), de.Type()
	}
	return err.Error(), fmt.Sprintf("%T", err)
}

func notConfiguredDetails(cfg *config.Config) string {
	missing := cfg.MissingSettings()
	if len(missing) == 0 {
		return fmt.Sprintf("provider %q is not available", cfg.Provider)
	}
	return "missing " + strings.Join(missing, ", ")
}
