package api

import (
	"net/http"
	"strings"
)

type healthConfig struct {
	FromEmail string `json:"from_email"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
}

type healthResponse struct {
	Status   string       `json:"status"`
	Service  string       `json:"service"`
	Provider string       `json:"provider"`
	APIKey   string       `json:"api_key"`
	Config   healthConfig `json:"config"`
}

type testResponse struct {
	ResendAPIKey string `json:"resend_api_key"`
	Provider     string `json:"provider"`
	FromEmail    string `json:"from_email"`
	ToEmail      string `json:"to_email"`
	ReadyToSend  bool   `json:"ready_to_send"`
}

// Home handles GET / with a plain liveness marker.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Email API is running!"))
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	apiKey := "missing"
	if h.cfg.Ready() {
		apiKey = "configured"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "healthy",
		Service:  "email-api",
		Provider: h.cfg.Provider,
		APIKey:   apiKey,
		Config: healthConfig{
			FromEmail: h.cfg.Mail.From,
			ToEmail:   strings.Join(h.cfg.Mail.To, ", "),
			Subject:   h.cfg.Mail.Subject,
		},
	})
}

// Test handles GET /test. It reports whether a send would be attempted
// without sending anything.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	resendKey := "MISSING"
	if h.cfg.Resend.APIKey != "" {
		resendKey = "SET"
	}

	writeJSON(w, http.StatusOK, testResponse{
		ResendAPIKey: resendKey,
		Provider:     h.cfg.Provider,
		FromEmail:    h.cfg.Mail.From,
		ToEmail:      strings.Join(h.cfg.Mail.To, ", "),
		ReadyToSend:  h.cfg.Ready() && h.provider != nil,
	})
}
