package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// expiryMargin is subtracted from the provider-declared token lifetime as a
// safety margin against clock skew and in-flight-request races.
const expiryMargin = 60 * time.Second

// tokenCache is the single-slot credential cache. It is replaced wholesale
// when expired or absent and never persisted. Concurrent refreshes racing
// past the mutex would each perform their own exchange; the mutex makes them
// take turns instead, and a duplicate exchange would be harmless anyway
// since the exchange is idempotent.
type tokenCache struct {
	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// bearerToken returns a valid "Bearer ..." header value, reusing the cached
// token while the clock is before its recorded expiry and performing a
// credential exchange otherwise.
func (spo *Client) bearerToken(ctx context.Context) (string, error) {
	spo.token.mu.Lock()
	defer spo.token.mu.Unlock()

	if spo.token.accessToken != "" && spo.now().Before(spo.token.expiresAt) {
		return "Bearer " + spo.token.accessToken, nil
	}

	if err := spo.exchangeCredentials(ctx); err != nil {
		return "", err
	}
	return "Bearer " + spo.token.accessToken, nil
}

type tokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (spo *Client) exchangeCredentials(ctx context.Context) error {
	if spo.clientID == "" || spo.clientSecret == "" {
		return ErrNotConfigured
	}

	form := "grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spo.accountsURL, strings.NewReader(form))
	if err != nil {
		return fmt.Errorf("token request error: %w", err)
	}
	credential := base64.StdEncoding.EncodeToString([]byte(spo.clientID + ":" + spo.clientSecret))
	req.Header.Set("Authorization", "Basic "+credential)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestAt := spo.now()
	resp, err := spo.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request error: %v: %w", err, ErrUpstreamAuth)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("token exchange status %d: %w", resp.StatusCode, ErrUpstreamAuth)
	}

	var result tokenResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("token decode error: %v: %w", err, ErrUpstreamAuth)
	}

	spo.token.accessToken = result.AccessToken
	spo.token.expiresAt = requestAt.Add(time.Duration(result.ExpiresIn)*time.Second - expiryMargin)

	return nil
}
