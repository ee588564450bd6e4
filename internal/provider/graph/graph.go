package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shineum/sendcard/internal/email"
	"github.com/shineum/sendcard/internal/provider"
)

const (
	loginBaseURL = "https://login.microsoftonline.com"
	graphBaseURL = "https://graph.microsoft.com/v1.0"
)

// GraphProviderConfig holds the configuration for creating a GraphProvider.
type GraphProviderConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Sender is the mailbox the card is sent from.
	Sender string
}

// GraphProvider sends emails as the configured sender mailbox via Graph
// sendMail. Graph ignores the message's display name.
type GraphProvider struct {
	sendURL string
	client  *http.Client
	tokens  *tokenSource
}

// New creates a new GraphProvider with the given configuration.
func New(cfg GraphProviderConfig) *GraphProvider {
	tokenURL := loginBaseURL + "/" + url.PathEscape(cfg.TenantID) + "/oauth2/v2.0/token"
	sendURL := graphBaseURL + "/users/" + url.PathEscape(cfg.Sender) + "/sendMail"
	return newWithOverrides(cfg, sendURL, tokenURL, &http.Client{Timeout: 30 * time.Second})
}

// newWithOverrides lets tests point the provider at local servers.
func newWithOverrides(cfg GraphProviderConfig, sendURL, tokenURL string, client *http.Client) *GraphProvider {
	creds := clientCredentials{
		tokenURL: tokenURL,
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
	}
	return &GraphProvider{
		sendURL: sendURL,
		client:  client,
		tokens:  newTokenSource(creds, client),
	}
}

// Send makes one sendMail call. Graph returns no message identifier, so the
// receipt is empty. A failure to obtain a token is a plain error.
func (g *GraphProvider) Send(ctx context.Context, msg *email.Email) (*provider.Receipt, error) {
	payload, err := json.Marshal(newSendMailBody(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	token, err := g.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		return &provider.Receipt{}, nil
	case http.StatusUnauthorized:
		g.tokens.Reset()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return nil, &provider.UpstreamError{
		Label:      "Graph",
		StatusCode: resp.StatusCode,
		Body:       string(raw),
	}
}

// Name returns the provider name.
func (g *GraphProvider) Name() string {
	return "msgraph"
}
