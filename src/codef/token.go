package codef

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenLifetime is how long we trust an issued token. CODEF grants more, but
// caching for 50 minutes leaves margin before the provider-side expiry.
const tokenLifetime = 50 * time.Minute

// Token is one bearer credential plus the expiry chosen for it.
type Token struct {
	Value  string
	Expiry time.Time
}

// TokenCache holds the single provider token shared by every feed call.
// Implementations must be safe for concurrent use.
type TokenCache interface {
	Get() (Token, bool)
	Set(Token)
}

// TokenManager issues and caches CODEF access tokens
// (client-credentials grant).
type TokenManager struct {
	cache        TokenCache
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	now          func() time.Time
}

func NewTokenManager(cache TokenCache, tokenURL, clientID, clientSecret string) *TokenManager {
	return &TokenManager{
		cache:        cache,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// Token returns the cached token if it has not expired, otherwise issues a
// fresh one.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if tok, ok := m.cache.Get(); ok && m.now().Before(tok.Expiry) {
		return tok.Value, nil
	}
	return m.Refresh(ctx)
}

// Refresh always performs the credential grant and unconditionally overwrites
// the cache. Callers use it to recover from a provider-side 401.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"read"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(m.clientID, m.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	m.cache.Set(Token{Value: payload.AccessToken, Expiry: m.now().Add(tokenLifetime)})
	return payload.AccessToken, nil
}
