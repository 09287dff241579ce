package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shineum/contact-relay/internal/email"
	"github.com/shineum/contact-relay/internal/provider"
)

const defaultGraphURL = "https://graph.microsoft.com/v1.0"

// GraphProviderConfig holds the configuration for creating a GraphProvider.
type GraphProviderConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// GraphProvider sends emails via the Microsoft Graph API using OAuth2
// client credentials authentication. The message is sent as the mailbox
// named by its From address.
type GraphProvider struct {
	graphURL   string
	httpClient *http.Client
	token      *tokenCache
}

// New creates a new GraphProvider with the given configuration.
func New(cfg GraphProviderConfig) *GraphProvider {
	tokenURL := fmt.Sprintf(
		"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
		url.PathEscape(cfg.TenantID),
	)

	client := &http.Client{Timeout: 30 * time.Second}

	return newWithOverrides(cfg, defaultGraphURL, tokenURL, client)
}

// newWithOverrides creates a GraphProvider with custom URLs and HTTP client,
// used for testing.
func newWithOverrides(cfg GraphProviderConfig, graphURL, tokenURL string, client *http.Client) *GraphProvider {
	return &GraphProvider{
		graphURL:   graphURL,
		httpClient: client,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, client),
	}
}

// Send delivers an email message with a single sendMail request. Graph
// answers 202 without a body, so the receipt ID is the request-id header.
func (g *GraphProvider) Send(ctx context.Context, msg *email.Email) (provider.Receipt, error) {
	bodyJSON, err := json.Marshal(buildSendMailRequest(msg))
	if err != nil {
		return provider.Receipt{}, provider.Fail(g.Name(), fmt.Errorf("failed to marshal request body: %w", err))
	}

	token, err := g.token.Token(ctx)
	if err != nil {
		return provider.Receipt{}, provider.Fail(g.Name(), fmt.Errorf("failed to get access token: %w", err))
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", g.graphURL, url.PathEscape(msg.From))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return provider.Receipt{}, provider.Fail(g.Name(), fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return provider.Receipt{}, provider.Fail(g.Name(), fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return provider.Receipt{ID: resp.Header.Get("request-id")}, nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Info("Graph API rejected access token, dropping cached token")
		g.token.Invalidate()
	}

	body, _ := io.ReadAll(resp.Body)
	return provider.Receipt{}, provider.Fail(g.Name(), newSendError(resp.StatusCode, body))
}

// Name returns the provider name.
func (g *GraphProvider) Name() string {
	return "msgraph"
}

// SendError is a non-2xx answer from the sendMail endpoint.
type SendError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *SendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Graph API error (HTTP %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("Graph API error (HTTP %d): %s", e.StatusCode, e.Message)
}

func newSendError(status int, body []byte) *SendError {
	var graphErr graphErrorResponse
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return &SendError{StatusCode: status, Code: graphErr.Error.Code, Message: graphErr.Error.Message}
	}
	return &SendError{StatusCode: status, Message: string(body)}
}
