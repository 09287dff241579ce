package graph

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenExpiryBuffer is subtracted from the advertised lifetime so a token is
// never used in the last minutes before it expires.
const tokenExpiryBuffer = 5 * time.Minute

// tokenCache manages OAuth2 client-credentials access tokens. Safe for
// concurrent use.
//
// A token without an advertised lifetime is never reused.
type tokenCache struct {
	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	creds       *clientcredentials.Config
	httpClient  *http.Client
}

func newTokenCache(tokenURL, clientID, clientSecret string, httpClient *http.Client) *tokenCache {
	return &tokenCache{
		creds: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"https://graph.microsoft.com/.default"},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// Token returns a cached token or acquires a new one.
func (tc *tokenCache) Token(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.accessToken != "" && time.Now().Before(tc.expiresAt) {
		return tc.accessToken, nil
	}

	return tc.refresh(ctx)
}

// Invalidate drops the cached token so the next Token call fetches a new
// one. Used after Graph rejects a token with 401.
func (tc *tokenCache) Invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.accessToken = ""
	tc.expiresAt = time.Time{}
}

// refresh acquires a new token. The caller must hold tc.mu.
func (tc *tokenCache) refresh(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, tc.httpClient)

	tok, err := tc.creds.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	tc.accessToken = tok.AccessToken
	tc.expiresAt = tok.Expiry.Add(-tokenExpiryBuffer)

	return tc.accessToken, nil
}
