package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	graphScope = "https://graph.microsoft.com/.default"
	// earlyRefresh is how long before its stated expiry a token is replaced.
	earlyRefresh = 5 * time.Minute
)

// clientCredentials identifies the application to the Entra ID token endpoint.
type clientCredentials struct {
	tokenURL string
	clientID string
	secret   string
}

// oauthToken is the token endpoint's JSON response.
type oauthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenSource hands out an app-only access token, fetching a new one when the
// held token is missing or stale. Safe for concurrent use; concurrent callers
// share a single fetch.
type tokenSource struct {
	creds  clientCredentials
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	current string
	staleAt time.Time
}

func newTokenSource(creds clientCredentials, client *http.Client) *tokenSource {
	return &tokenSource{creds: creds, client: client, now: time.Now}
}

// Get returns the held token, fetching a fresh one if needed.
func (s *tokenSource) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" && s.now().Before(s.staleAt) {
		return s.current, nil
	}

	tok, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.current = tok.AccessToken
	s.staleAt = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - earlyRefresh)
	return s.current, nil
}

// Reset drops the held token so the next Get fetches a new one.
func (s *tokenSource) Reset() {
	s.mu.Lock()
	s.current = ""
	s.staleAt = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) fetch(ctx context.Context) (*oauthToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.creds.clientID)
	form.Set("client_secret", s.creds.secret)
	form.Set("scope", graphScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.creds.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, raw)
	}

	var tok oauthToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response has no access_token")
	}
	return &tok, nil
}
